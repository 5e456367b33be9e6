// Package ticket renders confirmation tickets for allocated campers. A
// ticket is a point-in-time document; occupancy truth stays in the store.
package ticket

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"campcore/pkg/domain"
)

// Ticket is the confirmation document handed to a camper after allocation.
type Ticket struct {
	CampName    string              `json:"camp_name"`
	Edition     string              `json:"edition,omitempty"`
	PhoneNumber string              `json:"phone_number"`
	FirstName   string              `json:"first_name"`
	Category    string              `json:"category"`
	Status      domain.CamperStatus `json:"status"`
	Beds        []BedLine           `json:"beds"`
	PhotoURL    string              `json:"photo_url,omitempty"`
	IssuedAt    time.Time           `json:"issued_at"`
}

// BedLine is one allocated bed on the ticket. The first line is always the
// camper's own bed; any further lines cover dependants such as infants.
type BedLine struct {
	Hall   string `json:"hall"`
	Floor  int    `json:"floor"`
	Bed    int    `json:"bed"`
	Extra  bool   `json:"extra"`
	Legend string `json:"legend"`
}

// Build assembles a ticket from a camper record. The camper must hold a bed
// allocation; unallocated campers have nothing to confirm.
func Build(campName, edition string, camper domain.Camper, issuedAt time.Time) (Ticket, error) {
	if camper.PrimaryBed == nil {
		return Ticket{}, domain.NewEntityError(domain.KindNotAllocated, domain.EntityCamper, camper.PhoneNumber)
	}
	t := Ticket{
		CampName:    campName,
		Edition:     edition,
		PhoneNumber: camper.PhoneNumber,
		FirstName:   camper.FirstName,
		Category:    camper.Category,
		Status:      camper.Status,
		IssuedAt:    issuedAt.UTC(),
	}
	if camper.PhotoURL != nil {
		t.PhotoURL = *camper.PhotoURL
	}
	for i, ref := range camper.BedRefs() {
		line := BedLine{Hall: ref.HallName, Floor: ref.Floor, Bed: ref.Number, Extra: i > 0}
		if line.Extra {
			line.Legend = "additional bed"
		} else {
			line.Legend = "assigned bed"
		}
		t.Beds = append(t.Beds, line)
	}
	return t, nil
}

// JSON renders the ticket as an indented JSON document.
func (t Ticket) JSON() ([]byte, error) {
	payload, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ticket: %w", err)
	}
	payload = append(payload, '\n')
	return payload, nil
}

var textTemplate = template.Must(template.New("ticket").Parse(
	`{{.CampName}}{{if .Edition}} ({{.Edition}}){{end}}
CONFIRMATION TICKET

Name:     {{.FirstName}}
Phone:    {{.PhoneNumber}}
Category: {{.Category}}
Status:   {{.Status}}
{{range .Beds}}
  {{.Legend}}: {{.Hall}}, floor {{.Floor}}, bed {{.Bed}}{{end}}

Issued {{.IssuedAt.Format "2006-01-02 15:04 MST"}}
`))

// Text renders the ticket as a printable plain-text slip.
func (t Ticket) Text() (string, error) {
	var sb strings.Builder
	if err := textTemplate.Execute(&sb, t); err != nil {
		return "", fmt.Errorf("render ticket: %w", err)
	}
	return sb.String(), nil
}
