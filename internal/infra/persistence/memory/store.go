// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"campcore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Hall aliases domain.Hall for in-memory persistence operations.
	Hall = domain.Hall
	// Bed aliases domain.Bed.
	Bed = domain.Bed
	// BedRef aliases domain.BedRef.
	BedRef = domain.BedRef
	// Category aliases domain.Category.
	Category = domain.Category
	// Camper aliases domain.Camper.
	Camper = domain.Camper
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// RuleView aliases domain.RuleView providing read-only state.
	RuleView = domain.RuleView
	// PersistentStore aliases the domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	halls      map[string]Hall
	beds       map[string]Bed
	campers    map[string]Camper
	categories map[string]Category
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Halls      map[string]Hall     `json:"halls"`
	Beds       map[string]Bed      `json:"beds"`
	Campers    map[string]Camper   `json:"campers"`
	Categories map[string]Category `json:"categories"`
}

func newMemoryState() memoryState {
	return memoryState{
		halls:      make(map[string]Hall),
		beds:       make(map[string]Bed),
		campers:    make(map[string]Camper),
		categories: make(map[string]Category),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	s := Snapshot{
		Halls:      make(map[string]Hall, len(state.halls)),
		Beds:       make(map[string]Bed, len(state.beds)),
		Campers:    make(map[string]Camper, len(state.campers)),
		Categories: make(map[string]Category, len(state.categories)),
	}
	for k, v := range state.halls {
		s.Halls[k] = cloneHall(v)
	}
	for k, v := range state.beds {
		s.Beds[k] = cloneBed(v)
	}
	for k, v := range state.campers {
		s.Campers[k] = cloneCamper(v)
	}
	for k, v := range state.categories {
		s.Categories[k] = v
	}
	return s
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for k, v := range s.Halls {
		state.halls[k] = cloneHall(v)
	}
	for k, v := range s.Beds {
		state.beds[k] = cloneBed(v)
	}
	for k, v := range s.Campers {
		state.campers[k] = cloneCamper(v)
	}
	for k, v := range s.Categories {
		state.categories[k] = v
	}
	return state
}

// migrateSnapshot repairs loaded snapshots: missing buckets become empty maps,
// beds whose hall is gone are dropped, and occupant claims from campers that
// no longer exist or are superseded are cleared.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Halls == nil {
		snapshot.Halls = map[string]Hall{}
	}
	if snapshot.Beds == nil {
		snapshot.Beds = map[string]Bed{}
	}
	if snapshot.Campers == nil {
		snapshot.Campers = map[string]Camper{}
	}
	if snapshot.Categories == nil {
		snapshot.Categories = map[string]Category{}
	}

	hallExists := func(name string) bool {
		_, ok := snapshot.Halls[domain.NormalizeHallName(name)]
		return ok
	}

	for key, bed := range snapshot.Beds {
		if !hallExists(bed.HallName) {
			delete(snapshot.Beds, key)
			continue
		}
		if bed.OccupantPhone != nil {
			camper, ok := snapshot.Campers[*bed.OccupantPhone]
			if !ok || !camper.Status.Active() {
				bed.OccupantPhone = nil
			}
		}
		snapshot.Beds[key] = bed
	}

	for phone, camper := range snapshot.Campers {
		claimHolds := func(ref domain.BedRef) bool {
			bed, ok := snapshot.Beds[ref.Key()]
			return ok && bed.OccupantPhone != nil && *bed.OccupantPhone == phone
		}
		if camper.PrimaryBed != nil && !claimHolds(*camper.PrimaryBed) {
			camper.PrimaryBed = nil
			camper.ExtraBeds = nil
		}
		// Extra refs are validated one by one: an extra bed dropped with
		// its hall must not survive as a dangling claim.
		if len(camper.ExtraBeds) > 0 {
			var kept []domain.BedRef
			for _, ref := range camper.ExtraBeds {
				if claimHolds(ref) {
					kept = append(kept, ref)
				}
			}
			camper.ExtraBeds = kept
		}
		snapshot.Campers[phone] = camper
	}

	return snapshot
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.halls {
		cloned.halls[k] = cloneHall(v)
	}
	for k, v := range s.beds {
		cloned.beds[k] = cloneBed(v)
	}
	for k, v := range s.campers {
		cloned.campers[k] = cloneCamper(v)
	}
	for k, v := range s.categories {
		cloned.categories[k] = v
	}
	return cloned
}

func cloneHall(h Hall) Hall {
	cp := h
	cp.Floors = append([]domain.Floor(nil), h.Floors...)
	return cp
}

func cloneBed(b Bed) Bed {
	cp := b
	if b.OccupantPhone != nil {
		phone := *b.OccupantPhone
		cp.OccupantPhone = &phone
	}
	return cp
}

func cloneCamper(c Camper) Camper {
	cp := c
	if c.MedicalNotes != nil {
		notes := *c.MedicalNotes
		cp.MedicalNotes = &notes
	}
	if c.PhotoURL != nil {
		u := *c.PhotoURL
		cp.PhotoURL = &u
	}
	if c.PrimaryBed != nil {
		ref := *c.PrimaryBed
		cp.PrimaryBed = &ref
	}
	cp.ExtraBeds = append([]BedRef(nil), c.ExtraBeds...)
	return cp
}

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time

	// hallOrder preserves hall registration order so bed scans stay
	// deterministic across runs.
	hallOrder []string
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
	s.hallOrder = orderedHallKeys(s.state.halls)
}

// RulesEngine exposes the currently configured engine for integration points.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider. Intended for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

func orderedHallKeys(halls map[string]Hall) []string {
	keys := make([]string, 0, len(halls))
	for k := range halls {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return halls[keys[i]].CreatedAt.Before(halls[keys[j]].CreatedAt) ||
			(halls[keys[i]].CreatedAt.Equal(halls[keys[j]].CreatedAt) && keys[i] < keys[j])
	})
	return keys
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store     *Store
	state     memoryState
	hallOrder []string
	changes   []Change
	now       time.Time
}

// ruleView exposes a read-only snapshot of the transactional state to rules.
type ruleView struct {
	state *memoryState
}

func newRuleView(state *memoryState) RuleView {
	return ruleView{state: state}
}

// ListHalls returns all halls within the snapshot, ordered by normalized name.
func (v ruleView) ListHalls() []Hall {
	out := make([]Hall, 0, len(v.state.halls))
	for _, h := range v.state.halls {
		out = append(out, cloneHall(h))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// ListBeds returns all beds ordered by hall key, floor, and bed number.
func (v ruleView) ListBeds() []Bed {
	out := make([]Bed, 0, len(v.state.beds))
	for _, b := range v.state.beds {
		out = append(out, cloneBed(b))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		ah, bh := domain.NormalizeHallName(a.HallName), domain.NormalizeHallName(b.HallName)
		if ah != bh {
			return ah < bh
		}
		if a.Floor != b.Floor {
			return a.Floor < b.Floor
		}
		return a.Number < b.Number
	})
	return out
}

// ListCampers returns all campers in the snapshot ordered by phone number.
func (v ruleView) ListCampers() []Camper {
	out := make([]Camper, 0, len(v.state.campers))
	for _, c := range v.state.campers {
		out = append(out, cloneCamper(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PhoneNumber < out[j].PhoneNumber })
	return out
}

// ListCategories returns all categories ordered by name.
func (v ruleView) ListCategories() []Category {
	out := make([]Category, 0, len(v.state.categories))
	for _, c := range v.state.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FindHall retrieves a hall by (normalized) name from the snapshot.
func (v ruleView) FindHall(name string) (Hall, bool) {
	h, ok := v.state.halls[domain.NormalizeHallName(name)]
	if !ok {
		return Hall{}, false
	}
	return cloneHall(h), true
}

// FindBed retrieves a bed by coordinates from the snapshot.
func (v ruleView) FindBed(ref BedRef) (Bed, bool) {
	b, ok := v.state.beds[ref.Key()]
	if !ok {
		return Bed{}, false
	}
	return cloneBed(b), true
}

// FindCamper retrieves a camper by phone number from the snapshot.
func (v ruleView) FindCamper(phone string) (Camper, bool) {
	c, ok := v.state.campers[phone]
	if !ok {
		return Camper{}, false
	}
	return cloneCamper(c), true
}

// FindCategory retrieves a category by name from the snapshot.
func (v ruleView) FindCategory(name string) (Category, bool) {
	c, ok := v.state.categories[name]
	return c, ok
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Commits are serialized by the store lock; any error from fn or a blocking
// rule violation discards the copy, leaving no partial state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store:     s,
		state:     s.state.clone(),
		hallOrder: append([]string(nil), s.hallOrder...),
		now:       s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newRuleView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	s.hallOrder = tx.hallOrder
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(RuleView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newRuleView(&snapshot)
	return fn(view)
}

// GetCamper returns a camper by phone number.
func (s *Store) GetCamper(phone string) (Camper, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.campers[phone]
	if !ok {
		return Camper{}, false
	}
	return cloneCamper(c), true
}

// ListCampers returns all campers ordered by phone number.
func (s *Store) ListCampers() []Camper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newRuleView(&s.state).ListCampers()
}

// GetHall returns a hall by name.
func (s *Store) GetHall(name string) (Hall, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newRuleView(&s.state).FindHall(name)
}

// ListHalls returns all halls ordered by normalized name.
func (s *Store) ListHalls() []Hall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newRuleView(&s.state).ListHalls()
}

// ListBeds returns all beds in deterministic scan order.
func (s *Store) ListBeds() []Bed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newRuleView(&s.state).ListBeds()
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newRuleView(&s.state).ListCategories()
}

// OccupancySummary recomputes hall occupancy from bed state.
func (s *Store) OccupancySummary(hallName string) (domain.OccupancySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return occupancySummary(&s.state, hallName)
}

func occupancySummary(state *memoryState, hallName string) (domain.OccupancySummary, error) {
	key := domain.NormalizeHallName(hallName)
	hall, ok := state.halls[key]
	if !ok {
		return domain.OccupancySummary{}, domain.NewEntityError(domain.KindNotFound, domain.EntityHall, hallName)
	}
	summary := domain.OccupancySummary{HallName: hall.Name, TotalBeds: hall.TotalBeds}
	for _, bed := range state.beds {
		if domain.NormalizeHallName(bed.HallName) != key || bed.OccupantPhone == nil {
			continue
		}
		summary.Occupied++
		if camper, ok := state.campers[*bed.OccupantPhone]; ok && camper.Status == domain.StatusVerified {
			summary.Verified++
		}
	}
	summary.Remaining = summary.TotalBeds - summary.Occupied
	return summary, nil
}

// helper to record and append change entries.
func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() RuleView {
	return newRuleView(&tx.state)
}

// FindHall exposes hall lookup within the transaction scope.
func (tx *transaction) FindHall(name string) (Hall, bool) {
	return newRuleView(&tx.state).FindHall(name)
}

// FindBed exposes bed lookup within the transaction scope.
func (tx *transaction) FindBed(ref BedRef) (Bed, bool) {
	return newRuleView(&tx.state).FindBed(ref)
}

// FindCamper exposes camper lookup within the transaction scope.
func (tx *transaction) FindCamper(phone string) (Camper, bool) {
	return newRuleView(&tx.state).FindCamper(phone)
}

// FindCategory exposes category lookup within the transaction scope.
func (tx *transaction) FindCategory(name string) (Category, bool) {
	return newRuleView(&tx.state).FindCategory(name)
}

// CreateHall stores a new hall and materializes its beds, one record per
// floor slot, all unoccupied.
func (tx *transaction) CreateHall(h Hall) (Hall, error) {
	if h.Name == "" {
		return Hall{}, errors.New("hall requires a name")
	}
	key := h.Key()
	if _, exists := tx.state.halls[key]; exists {
		return Hall{}, domain.NewEntityError(domain.KindAlreadyExists, domain.EntityHall, h.Name)
	}
	if len(h.Floors) == 0 {
		return Hall{}, fmt.Errorf("hall %q requires at least one floor", h.Name)
	}
	total := 0
	seen := make(map[int]struct{}, len(h.Floors))
	for _, floor := range h.Floors {
		if floor.BedCount <= 0 {
			return Hall{}, fmt.Errorf("hall %q floor %d: bed count must be positive", h.Name, floor.Number)
		}
		if _, dup := seen[floor.Number]; dup {
			return Hall{}, fmt.Errorf("hall %q: duplicate floor %d", h.Name, floor.Number)
		}
		seen[floor.Number] = struct{}{}
		total += floor.BedCount
	}
	h.FloorCount = len(h.Floors)
	h.TotalBeds = total
	for i := range h.Floors {
		h.Floors[i].HallName = h.Name
	}
	sort.Slice(h.Floors, func(i, j int) bool { return h.Floors[i].Number < h.Floors[j].Number })
	h.CreatedAt = tx.now
	h.UpdatedAt = tx.now
	tx.state.halls[key] = cloneHall(h)
	tx.hallOrder = append(tx.hallOrder, key)

	for _, floor := range h.Floors {
		for n := 1; n <= floor.BedCount; n++ {
			bed := Bed{HallName: h.Name, Floor: floor.Number, Number: n}
			tx.state.beds[bed.Ref().Key()] = bed
		}
	}

	tx.recordChange(Change{Entity: domain.EntityHall, Action: domain.ActionCreate, After: cloneHall(h)})
	return cloneHall(h), nil
}

// UpdateHall mutates hall metadata. Floor layout is fixed after creation;
// mutators may change name casing or gender segmentation only.
func (tx *transaction) UpdateHall(name string, mutator func(*Hall) error) (Hall, error) {
	key := domain.NormalizeHallName(name)
	current, ok := tx.state.halls[key]
	if !ok {
		return Hall{}, domain.NewEntityError(domain.KindNotFound, domain.EntityHall, name)
	}
	before := cloneHall(current)
	if err := mutator(&current); err != nil {
		return Hall{}, err
	}
	if current.Key() != key {
		return Hall{}, fmt.Errorf("hall %q: renaming across keys is not supported", name)
	}
	current.FloorCount = before.FloorCount
	current.TotalBeds = before.TotalBeds
	current.Floors = before.Floors
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.halls[key] = cloneHall(current)
	tx.recordChange(Change{Entity: domain.EntityHall, Action: domain.ActionUpdate, Before: before, After: cloneHall(current)})
	return cloneHall(current), nil
}

// DeleteHall removes a hall and its beds. Blocked while any bed is occupied.
func (tx *transaction) DeleteHall(name string) error {
	key := domain.NormalizeHallName(name)
	current, ok := tx.state.halls[key]
	if !ok {
		return domain.NewEntityError(domain.KindNotFound, domain.EntityHall, name)
	}
	for bedKey, bed := range tx.state.beds {
		if domain.NormalizeHallName(bed.HallName) != key {
			continue
		}
		if bed.OccupantPhone != nil {
			return fmt.Errorf("hall %q still has occupied bed %s", name, bed.Ref())
		}
		delete(tx.state.beds, bedKey)
	}
	delete(tx.state.halls, key)
	for i, k := range tx.hallOrder {
		if k == key {
			tx.hallOrder = append(tx.hallOrder[:i], tx.hallOrder[i+1:]...)
			break
		}
	}
	tx.recordChange(Change{Entity: domain.EntityHall, Action: domain.ActionDelete, Before: cloneHall(current)})
	return nil
}

// CreateCategory stores a new category definition.
func (tx *transaction) CreateCategory(c Category) (Category, error) {
	if c.Name == "" {
		return Category{}, errors.New("category requires a name")
	}
	if _, exists := tx.state.categories[c.Name]; exists {
		return Category{}, domain.NewEntityError(domain.KindAlreadyExists, domain.EntityCategory, c.Name)
	}
	if c.ExtraBeds < 0 {
		return Category{}, fmt.Errorf("category %q: extra beds cannot be negative", c.Name)
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.categories[c.Name] = c
	tx.recordChange(Change{Entity: domain.EntityCategory, Action: domain.ActionCreate, After: c})
	return c, nil
}

// DeleteCategory removes a category. Campers registered under it keep their
// stored demographic fields; defaults are applied at registration time only.
func (tx *transaction) DeleteCategory(name string) error {
	current, ok := tx.state.categories[name]
	if !ok {
		return domain.NewEntityError(domain.KindNotFound, domain.EntityCategory, name)
	}
	delete(tx.state.categories, name)
	tx.recordChange(Change{Entity: domain.EntityCategory, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateCamper stores a new camper registration keyed by phone number.
func (tx *transaction) CreateCamper(c Camper) (Camper, error) {
	if c.PhoneNumber == "" {
		return Camper{}, errors.New("camper requires a phone number")
	}
	if _, exists := tx.state.campers[c.PhoneNumber]; exists {
		return Camper{}, domain.NewEntityError(domain.KindAlreadyExists, domain.EntityCamper, c.PhoneNumber)
	}
	if c.Status == "" {
		c.Status = domain.StatusPending
	}
	c.CreatedAt = tx.now
	c.UpdatedAt = tx.now
	tx.state.campers[c.PhoneNumber] = cloneCamper(c)
	tx.recordChange(Change{Entity: domain.EntityCamper, Action: domain.ActionCreate, After: cloneCamper(c)})
	return cloneCamper(c), nil
}

// UpdateCamper mutates a camper using the provided mutator function.
func (tx *transaction) UpdateCamper(phone string, mutator func(*Camper) error) (Camper, error) {
	current, ok := tx.state.campers[phone]
	if !ok {
		return Camper{}, domain.NewEntityError(domain.KindNotFound, domain.EntityCamper, phone)
	}
	before := cloneCamper(current)
	if err := mutator(&current); err != nil {
		return Camper{}, err
	}
	current.PhoneNumber = phone
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.campers[phone] = cloneCamper(current)
	tx.recordChange(Change{Entity: domain.EntityCamper, Action: domain.ActionUpdate, Before: before, After: cloneCamper(current)})
	return cloneCamper(current), nil
}

// DeleteCamper removes a camper record. Blocked while the camper holds beds.
func (tx *transaction) DeleteCamper(phone string) error {
	current, ok := tx.state.campers[phone]
	if !ok {
		return domain.NewEntityError(domain.KindNotFound, domain.EntityCamper, phone)
	}
	if current.PrimaryBed != nil {
		return fmt.Errorf("camper %q still holds bed %s; release it first", phone, current.PrimaryBed)
	}
	delete(tx.state.campers, phone)
	tx.recordChange(Change{Entity: domain.EntityCamper, Action: domain.ActionDelete, Before: cloneCamper(current)})
	return nil
}

// FindAvailableBed scans halls in registration order, floors and bed numbers
// ascending, and returns the first free bed matching the constraint. The
// result must still be claimed via ReserveBed, which re-validates occupancy.
func (tx *transaction) FindAvailableBed(constraint domain.BedConstraint) (BedRef, error) {
	wantHall := domain.NormalizeHallName(constraint.HallName)
	for _, hallKey := range tx.hallOrder {
		hall, ok := tx.state.halls[hallKey]
		if !ok {
			continue
		}
		if wantHall != "" && hallKey != wantHall {
			continue
		}
		if constraint.Gender != "" && hall.Gender != "" && hall.Gender != constraint.Gender {
			continue
		}
		for _, floor := range hall.Floors {
			if constraint.Floor != 0 && floor.Number != constraint.Floor {
				continue
			}
			for n := 1; n <= floor.BedCount; n++ {
				ref := BedRef{HallName: hall.Name, Floor: floor.Number, Number: n}
				if bed, ok := tx.state.beds[ref.Key()]; ok && !bed.Occupied() {
					return ref, nil
				}
			}
		}
	}
	return BedRef{}, domain.NewError(domain.KindNoCapacity, "no free bed matching gender %q hall %q floor %d", constraint.Gender, constraint.HallName, constraint.Floor)
}

// ReserveBed claims the bed for the camper, guarded on the current occupant.
func (tx *transaction) ReserveBed(ref BedRef, phone string) error {
	bed, ok := tx.state.beds[ref.Key()]
	if !ok {
		return domain.NewEntityError(domain.KindNotFound, domain.EntityBed, ref.String())
	}
	if bed.OccupantPhone != nil {
		if *bed.OccupantPhone == phone {
			return nil
		}
		return domain.NewError(domain.KindConflict, "bed %s already held by %q", ref, *bed.OccupantPhone)
	}
	before := cloneBed(bed)
	bed.OccupantPhone = &phone
	tx.state.beds[ref.Key()] = bed
	tx.recordChange(Change{Entity: domain.EntityBed, Action: domain.ActionUpdate, Before: before, After: cloneBed(bed)})
	return nil
}

// ReleaseBed clears the bed's occupant claim.
func (tx *transaction) ReleaseBed(ref BedRef, allowEmpty bool) error {
	bed, ok := tx.state.beds[ref.Key()]
	if !ok {
		return domain.NewEntityError(domain.KindNotFound, domain.EntityBed, ref.String())
	}
	if bed.OccupantPhone == nil {
		if allowEmpty {
			return nil
		}
		return domain.NewError(domain.KindNotOccupied, "bed %s is not occupied", ref)
	}
	before := cloneBed(bed)
	bed.OccupantPhone = nil
	tx.state.beds[ref.Key()] = bed
	tx.recordChange(Change{Entity: domain.EntityBed, Action: domain.ActionUpdate, Before: before, After: cloneBed(bed)})
	return nil
}
