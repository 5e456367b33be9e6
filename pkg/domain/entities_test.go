package domain

import "testing"

func TestNormalizeHallName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Zion Hall", "zion hall"},
		{"  ZION   hall ", "zion hall"},
		{"zion hall", "zion hall"},
		{"Bethel", "bethel"},
	}
	for _, c := range cases {
		if got := NormalizeHallName(c.in); got != c.want {
			t.Errorf("NormalizeHallName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBedRefKeyUsesNormalizedHall(t *testing.T) {
	a := BedRef{HallName: "Zion Hall", Floor: 2, Number: 5}
	b := BedRef{HallName: "  zion   HALL ", Floor: 2, Number: 5}
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "zion hall/2/5" {
		t.Fatalf("unexpected key %q", a.Key())
	}
}

func TestCamperStatusActive(t *testing.T) {
	if !StatusPending.Active() || !StatusVerified.Active() {
		t.Fatalf("pending and verified must be active")
	}
	if StatusSuperseded.Active() {
		t.Fatalf("superseded must not be active")
	}
}

func TestCamperBedRefs(t *testing.T) {
	var c Camper
	if refs := c.BedRefs(); refs != nil {
		t.Fatalf("unallocated camper returned refs: %v", refs)
	}
	primary := BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}
	c.PrimaryBed = &primary
	c.ExtraBeds = []BedRef{{HallName: "Zion Hall", Floor: 1, Number: 2}}
	refs := c.BedRefs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0] != primary {
		t.Fatalf("primary must come first, got %v", refs[0])
	}
}

func TestApplyProfileOverwrites(t *testing.T) {
	c := Camper{Gender: GenderMale, MaritalStatus: "Single", AgeRange: "18-25", Country: "Nigeria"}
	c.ApplyProfile(Profile{Gender: GenderFemale, MaritalStatus: "Married", AgeRange: "26-35", Country: "Ghana"})
	if c.Gender != GenderFemale || c.MaritalStatus != "Married" || c.AgeRange != "26-35" || c.Country != "Ghana" {
		t.Fatalf("profile not fully overwritten: %+v", c)
	}
}

func TestSortBedRefs(t *testing.T) {
	refs := []BedRef{
		{HallName: "Zion Hall", Floor: 2, Number: 1},
		{HallName: "Bethel", Floor: 1, Number: 3},
		{HallName: "Zion Hall", Floor: 1, Number: 4},
		{HallName: "Zion Hall", Floor: 1, Number: 2},
	}
	SortBedRefs(refs)
	want := []BedRef{
		{HallName: "Bethel", Floor: 1, Number: 3},
		{HallName: "Zion Hall", Floor: 1, Number: 2},
		{HallName: "Zion Hall", Floor: 1, Number: 4},
		{HallName: "Zion Hall", Floor: 2, Number: 1},
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("position %d: got %v, want %v", i, refs[i], want[i])
		}
	}
}

func TestResultMergeAndBlocking(t *testing.T) {
	var res Result
	if res.HasBlocking() {
		t.Fatalf("empty result must not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if res.HasBlocking() {
		t.Fatalf("warn severity must not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}})
	if !res.HasBlocking() {
		t.Fatalf("block severity must block")
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
}
