package domain

import (
	"errors"
	"fmt"
)

// Kind classifies engine failures so callers can branch without string
// matching. Every kind is surfaced verbatim; only KindConflict is ever
// retried, once, inside the allocation engine.
type Kind string

const (
	// KindIncompleteProfile marks an allocation attempt missing required fields.
	KindIncompleteProfile Kind = "incomplete_profile"
	// KindUnknownCategory marks inference against an unregistered category.
	KindUnknownCategory Kind = "unknown_category"
	// KindNoCapacity marks an exhausted bed search. Operator-visible.
	KindNoCapacity Kind = "no_capacity"
	// KindAllocationRace marks a reservation that conflicted twice. Operator-visible.
	KindAllocationRace Kind = "allocation_race"
	// KindNotAllocated marks verification of a camper holding no bed.
	KindNotAllocated Kind = "not_allocated"
	// KindNotOccupied marks a release or transfer precondition failure.
	KindNotOccupied Kind = "not_occupied"
	// KindConflict marks a low-level reservation race on a single bed.
	KindConflict Kind = "conflict"
	// KindNotFound marks a missing hall, bed, category, or camper.
	KindNotFound Kind = "not_found"
	// KindAlreadyExists marks a duplicate create keyed on an existing record.
	KindAlreadyExists Kind = "already_exists"
)

// Error carries a Kind plus context about the entity involved.
type Error struct {
	Kind     Kind
	Entity   EntityType
	ID       string
	Message  string
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.ID != "":
		return fmt.Sprintf("%s %s %q: %s", e.Kind, e.Entity, e.ID, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.ID != "":
		return fmt.Sprintf("%s: %s %q", e.Kind, e.Entity, e.ID)
	default:
		return string(e.Kind)
	}
}

// Is matches errors by kind so callers can use errors.Is with sentinel kinds.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError constructs a kinded error with a free-form message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewEntityError constructs a kinded error referencing a specific record.
func NewEntityError(kind Kind, entity EntityType, id string) *Error {
	return &Error{Kind: kind, Entity: entity, ID: id}
}

// KindOf extracts the Kind from err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
