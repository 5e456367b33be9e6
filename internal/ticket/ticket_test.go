package ticket

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"campcore/pkg/domain"
)

func allocatedCamper() domain.Camper {
	return domain.Camper{
		PhoneNumber: "08030000001",
		FirstName:   "Ngozi",
		Category:    "Nursing Mothers",
		Status:      domain.StatusVerified,
		PrimaryBed:  &domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1},
		ExtraBeds:   []domain.BedRef{{HallName: "Zion Hall", Floor: 1, Number: 2}},
	}
}

func TestBuildRequiresAllocation(t *testing.T) {
	camper := allocatedCamper()
	camper.PrimaryBed = nil
	camper.ExtraBeds = nil
	_, err := Build("Annual Youth Camp", "2026", camper, time.Now())
	if !domain.IsKind(err, domain.KindNotAllocated) {
		t.Fatalf("expected not_allocated, got %v", err)
	}
}

func TestBuildListsBedsPrimaryFirst(t *testing.T) {
	issued := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)
	tk, err := Build("Annual Youth Camp", "2026", allocatedCamper(), issued)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(tk.Beds) != 2 {
		t.Fatalf("expected 2 bed lines, got %d", len(tk.Beds))
	}
	first, second := tk.Beds[0], tk.Beds[1]
	if first.Extra || first.Legend != "assigned bed" || first.Bed != 1 {
		t.Fatalf("primary line: %+v", first)
	}
	if !second.Extra || second.Legend != "additional bed" || second.Bed != 2 {
		t.Fatalf("extra line: %+v", second)
	}
	if !tk.IssuedAt.Equal(issued) {
		t.Fatalf("issued at = %v", tk.IssuedAt)
	}
}

func TestJSONRendersDocument(t *testing.T) {
	tk, err := Build("Annual Youth Camp", "2026", allocatedCamper(), time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	payload, err := tk.JSON()
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if payload[len(payload)-1] != '\n' {
		t.Fatalf("payload missing trailing newline")
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["camp_name"] != "Annual Youth Camp" || decoded["phone_number"] != "08030000001" {
		t.Fatalf("decoded: %+v", decoded)
	}
	beds, ok := decoded["beds"].([]any)
	if !ok || len(beds) != 2 {
		t.Fatalf("beds field: %+v", decoded["beds"])
	}
}

func TestTextRendersSlip(t *testing.T) {
	tk, err := Build("Annual Youth Camp", "2026", allocatedCamper(), time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	text, err := tk.Text()
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	for _, want := range []string{
		"Annual Youth Camp (2026)",
		"CONFIRMATION TICKET",
		"Ngozi",
		"assigned bed: Zion Hall, floor 1, bed 1",
		"additional bed: Zion Hall, floor 1, bed 2",
		"Issued 2026-08-20 09:30 UTC",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("slip missing %q:\n%s", want, text)
		}
	}
}
