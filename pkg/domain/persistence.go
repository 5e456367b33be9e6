package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Every mutation either commits as a
// whole or leaves no trace; the transfer protocol and multi-bed allocation
// depend on that guarantee.
type Transaction interface {
	Snapshot() RuleView

	CreateHall(Hall) (Hall, error)
	UpdateHall(name string, mutator func(*Hall) error) (Hall, error)
	DeleteHall(name string) error

	CreateCategory(Category) (Category, error)
	DeleteCategory(name string) error

	CreateCamper(Camper) (Camper, error)
	UpdateCamper(phone string, mutator func(*Camper) error) (Camper, error)
	DeleteCamper(phone string) error

	FindHall(name string) (Hall, bool)
	FindBed(ref BedRef) (Bed, bool)
	FindCamper(phone string) (Camper, bool)
	FindCategory(name string) (Category, bool)

	// FindAvailableBed scans halls in registration order, floors and bed
	// numbers ascending, returning the first free bed matching the
	// constraint. The scan is deterministic: identical state yields an
	// identical result. A KindNoCapacity error reports exhaustion.
	FindAvailableBed(constraint BedConstraint) (BedRef, error)

	// ReserveBed claims the bed for the camper, guarded on the current
	// occupant: a bed already held by a different camper yields
	// KindConflict. Re-reserving a bed for its current occupant is a no-op.
	ReserveBed(ref BedRef, phone string) error

	// ReleaseBed clears the bed's occupant. Releasing an already-empty bed
	// yields KindNotOccupied unless allowEmpty is set.
	ReleaseBed(ref BedRef, allowEmpty bool) error
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(RuleView) error) error
	GetCamper(phone string) (Camper, bool)
	ListCampers() []Camper
	GetHall(name string) (Hall, bool)
	ListHalls() []Hall
	ListBeds() []Bed
	ListCategories() []Category

	// OccupancySummary recomputes hall occupancy from bed state. It is a
	// derived read; no occupancy counter is ever stored.
	OccupancySummary(hallName string) (OccupancySummary, error)
}
