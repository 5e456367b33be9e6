// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by campcore.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityHall identifies a residential hall record.
	EntityHall EntityType = "hall"
	// EntityFloor identifies a floor record within a hall.
	EntityFloor EntityType = "floor"
	// EntityBed identifies a single bed record.
	EntityBed EntityType = "bed"
	// EntityCategory identifies a camper category record.
	EntityCategory EntityType = "category"
	// EntityCamper identifies a camper registration record.
	EntityCamper EntityType = "camper"
)

// CamperStatus represents the canonical camper lifecycle states.
type CamperStatus string

// Canonical camper statuses used for verification and transfer handling.
const (
	// StatusPending indicates a registered camper not yet confirmed on site.
	StatusPending CamperStatus = "pending"
	// StatusVerified indicates an allocated camper confirmed in person. Terminal.
	StatusVerified CamperStatus = "verified"
	// StatusSuperseded indicates a record replaced through a bed transfer.
	// Terminal, excluded from active occupancy counts, retained for audit.
	StatusSuperseded CamperStatus = "superseded"
)

// Active reports whether the status participates in occupancy accounting.
func (s CamperStatus) Active() bool {
	return s == StatusPending || s == StatusVerified
}

// Gender labels used by hall segmentation and category defaults.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// NormalizeHallName folds case and interior whitespace so that operator input
// such as "  ZION hall " and "Zion Hall" address the same record.
func NormalizeHallName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Hall represents a residential building holding gender-segmented bedspace.
type Hall struct {
	Name       string    `json:"name"`
	Gender     Gender    `json:"gender"`
	FloorCount int       `json:"floor_count"`
	TotalBeds  int       `json:"total_beds"`
	Floors     []Floor   `json:"floors"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Key returns the normalized lookup key for the hall.
func (h Hall) Key() string { return NormalizeHallName(h.Name) }

// Floor belongs to exactly one hall.
type Floor struct {
	HallName string `json:"hall_name"`
	Number   int    `json:"number"`
	BedCount int    `json:"bed_count"`
}

// BedRef addresses a single bed by its physical coordinates. Camper records
// hold refs; occupancy truth lives on the Bed itself.
type BedRef struct {
	HallName string `json:"hall_name"`
	Floor    int    `json:"floor"`
	Number   int    `json:"number"`
}

// Key returns the canonical map key for the referenced bed.
func (r BedRef) Key() string {
	return fmt.Sprintf("%s/%d/%d", NormalizeHallName(r.HallName), r.Floor, r.Number)
}

func (r BedRef) String() string {
	return fmt.Sprintf("%s floor %d bed %d", r.HallName, r.Floor, r.Number)
}

// IsZero reports whether the ref is unset.
func (r BedRef) IsZero() bool { return r.HallName == "" && r.Floor == 0 && r.Number == 0 }

// Bed is the sole owner of occupancy truth. OccupantPhone is nil iff the bed
// is free; a non-nil value holds the phone number of exactly one active camper.
type Bed struct {
	HallName      string  `json:"hall_name"`
	Floor         int     `json:"floor"`
	Number        int     `json:"number"`
	OccupantPhone *string `json:"occupant_phone"`
}

// Ref returns the coordinates of the bed.
func (b Bed) Ref() BedRef {
	return BedRef{HallName: b.HallName, Floor: b.Floor, Number: b.Number}
}

// Occupied reports whether the bed currently holds an occupant claim.
func (b Bed) Occupied() bool { return b.OccupantPhone != nil }

// Category drives default demographic fields and special allocation rules.
// Defaults are applied at registration time; removing a category later never
// rewrites fields already stored on campers.
type Category struct {
	Name          string    `json:"name"`
	Gender        Gender    `json:"gender"`
	MaritalStatus string    `json:"marital_status"`
	AgeRange      string    `json:"age_range"`
	Country       string    `json:"country"`
	ExtraBeds     int       `json:"extra_beds"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Profile holds the demographic fields derived from a category selection.
type Profile struct {
	Gender        Gender `json:"gender"`
	MaritalStatus string `json:"marital_status"`
	AgeRange      string `json:"age_range"`
	Country       string `json:"country"`
}

// Camper is an attendee registration keyed by phone number. A camper with a
// nil PrimaryBed is incomplete and holds no inventory claim.
type Camper struct {
	PhoneNumber   string       `json:"phone_number"`
	FirstName     string       `json:"first_name"`
	Category      string       `json:"category"`
	Gender        Gender       `json:"gender"`
	MaritalStatus string       `json:"marital_status"`
	AgeRange      string       `json:"age_range"`
	Country       string       `json:"country"`
	State         string       `json:"state"`
	ArrivalDate   string       `json:"arrival_date"`
	LocalAssembly string       `json:"local_assembly"`
	MedicalNotes  *string      `json:"medical_notes,omitempty"`
	PhotoURL      *string      `json:"photo_url,omitempty"`
	Status        CamperStatus `json:"status"`
	PrimaryBed    *BedRef      `json:"primary_bed"`
	ExtraBeds     []BedRef     `json:"extra_beds"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Allocated reports whether the camper holds a primary bed claim.
func (c Camper) Allocated() bool { return c.PrimaryBed != nil }

// BedRefs returns the camper's primary and extra bed coordinates in order.
func (c Camper) BedRefs() []BedRef {
	if c.PrimaryBed == nil {
		return nil
	}
	refs := make([]BedRef, 0, 1+len(c.ExtraBeds))
	refs = append(refs, *c.PrimaryBed)
	refs = append(refs, c.ExtraBeds...)
	return refs
}

// ApplyProfile overwrites the camper's derived demographic fields with the
// supplied profile. Last write wins; there is no merge.
func (c *Camper) ApplyProfile(p Profile) {
	c.Gender = p.Gender
	c.MaritalStatus = p.MaritalStatus
	c.AgeRange = p.AgeRange
	c.Country = p.Country
}

// OccupancySummary is a derived per-hall read recomputed from bed state.
// It is never backed by a mutable counter.
type OccupancySummary struct {
	HallName  string `json:"hall_name"`
	TotalBeds int    `json:"total_beds"`
	Occupied  int    `json:"occupied"`
	Verified  int    `json:"verified"`
	Remaining int    `json:"remaining"`
}

// BedConstraint narrows a deterministic bed search. A zero value matches any
// bed in any hall open to the given gender.
type BedConstraint struct {
	Gender   Gender
	HallName string // optional; normalized before matching
	Floor    int    // optional; 0 matches any floor
}

// SortBedRefs orders refs by hall key, floor, then bed number ascending.
func SortBedRefs(refs []BedRef) {
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		ah, bh := NormalizeHallName(a.HallName), NormalizeHallName(b.HallName)
		if ah != bh {
			return ah < bh
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.Number < b.Number
	})
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
