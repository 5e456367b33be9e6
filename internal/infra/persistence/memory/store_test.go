package memory

import (
	"context"
	"errors"
	"testing"

	"campcore/pkg/domain"
)

func newHall(name string, gender domain.Gender, floors ...domain.Floor) domain.Hall {
	return domain.Hall{Name: name, Gender: gender, Floors: floors}
}

func mustCreateHall(t *testing.T, store *Store, hall domain.Hall) domain.Hall {
	t.Helper()
	var created domain.Hall
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var e error
		created, e = tx.CreateHall(hall)
		return e
	}); err != nil {
		t.Fatalf("create hall %q: %v", hall.Name, err)
	}
	return created
}

func TestCreateHallMaterializesBeds(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	created := mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale,
		domain.Floor{Number: 1, BedCount: 2},
		domain.Floor{Number: 2, BedCount: 3},
	))

	if created.FloorCount != 2 || created.TotalBeds != 5 {
		t.Fatalf("unexpected hall totals: %+v", created)
	}
	beds := store.ListBeds()
	if len(beds) != 5 {
		t.Fatalf("expected 5 beds, got %d", len(beds))
	}
	for _, bed := range beds {
		if bed.Occupied() {
			t.Fatalf("new bed %s must be unoccupied", bed.Ref())
		}
	}
}

func TestCreateHallValidation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())

	cases := []struct {
		name string
		hall domain.Hall
	}{
		{"no floors", newHall("Empty", domain.GenderMale)},
		{"zero beds", newHall("Zero", domain.GenderMale, domain.Floor{Number: 1, BedCount: 0})},
		{"duplicate floor", newHall("Dup", domain.GenderMale,
			domain.Floor{Number: 1, BedCount: 2},
			domain.Floor{Number: 1, BedCount: 3},
		)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, e := tx.CreateHall(c.hall)
				return e
			})
			if err == nil {
				t.Fatalf("expected error for %s", c.name)
			}
		})
	}
}

func TestCreateHallDuplicateNameNormalized(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateHall(newHall("  ZION   hall ", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))
		return e
	})
	if !domain.IsKind(err, domain.KindAlreadyExists) {
		t.Fatalf("expected already_exists, got %v", err)
	}
}

func TestFindAvailableBedDeterministicOrder(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	// Registration order decides hall priority regardless of name sort.
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale,
		domain.Floor{Number: 1, BedCount: 2},
		domain.Floor{Number: 2, BedCount: 2},
	))
	mustCreateHall(t, store, newHall("Bethel", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 2}))

	want := []domain.BedRef{
		{HallName: "Zion Hall", Floor: 1, Number: 1},
		{HallName: "Zion Hall", Floor: 1, Number: 2},
		{HallName: "Zion Hall", Floor: 2, Number: 1},
		{HallName: "Zion Hall", Floor: 2, Number: 2},
		{HallName: "Bethel", Floor: 1, Number: 1},
		{HallName: "Bethel", Floor: 1, Number: 2},
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		for i, expect := range want {
			ref, err := tx.FindAvailableBed(domain.BedConstraint{Gender: domain.GenderFemale})
			if err != nil {
				return err
			}
			if ref != expect {
				t.Fatalf("scan %d: got %v, want %v", i, ref, expect)
			}
			if err := tx.ReserveBed(ref, "0803000000"+string(rune('0'+i))); err != nil {
				return err
			}
		}
		_, err := tx.FindAvailableBed(domain.BedConstraint{Gender: domain.GenderFemale})
		if !domain.IsKind(err, domain.KindNoCapacity) {
			t.Fatalf("expected no_capacity after exhaustion, got %v", err)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestFindAvailableBedGenderSegmentation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Gilead", domain.GenderMale, domain.Floor{Number: 1, BedCount: 1}))
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		ref, err := tx.FindAvailableBed(domain.BedConstraint{Gender: domain.GenderFemale})
		if err != nil {
			return err
		}
		if ref.HallName != "Zion Hall" {
			t.Fatalf("female search landed in %q", ref.HallName)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestReserveBedOccupantGuard(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))
	ref := domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.ReserveBed(ref, "08030000001"); err != nil {
			return err
		}
		// Same occupant re-reserving is a no-op.
		if err := tx.ReserveBed(ref, "08030000001"); err != nil {
			t.Fatalf("re-reserve by occupant: %v", err)
		}
		err := tx.ReserveBed(ref, "08030000002")
		if !domain.IsKind(err, domain.KindConflict) {
			t.Fatalf("expected conflict for second occupant, got %v", err)
		}
		return tx.ReleaseBed(ref, false)
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestReleaseBedEmptyGuard(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))
	ref := domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.ReleaseBed(ref, false); !domain.IsKind(err, domain.KindNotOccupied) {
			t.Fatalf("expected not_occupied, got %v", err)
		}
		if err := tx.ReleaseBed(ref, true); err != nil {
			t.Fatalf("allowEmpty release: %v", err)
		}
		return nil
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }
func (blockAllRule) Evaluate(context.Context, domain.RuleView, []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{Rule: "block_all", Severity: domain.SeverityBlock}}}, nil
}

func TestBlockingViolationRollsBack(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateCamper(domain.Camper{PhoneNumber: "08030000001"})
		return e
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if _, ok := store.GetCamper("08030000001"); ok {
		t.Fatalf("blocked transaction must leave no state")
	}
}

func TestTransactionErrorRollsBack(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.ReserveBed(domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}, "08030000001"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	for _, bed := range store.ListBeds() {
		if bed.Occupied() {
			t.Fatalf("failed transaction must release bed %s", bed.Ref())
		}
	}
}

func TestOccupancySummaryRecomputed(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 3}))

	ref := domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		primary := ref
		if _, err := tx.CreateCamper(domain.Camper{
			PhoneNumber: "08030000001",
			Status:      domain.StatusVerified,
			PrimaryBed:  &primary,
		}); err != nil {
			return err
		}
		return tx.ReserveBed(ref, "08030000001")
	}); err != nil {
		t.Fatalf("seed occupancy: %v", err)
	}

	summary, err := store.OccupancySummary("  zion HALL ")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalBeds != 3 || summary.Occupied != 1 || summary.Verified != 1 || summary.Remaining != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := store.OccupancySummary("Unknown"); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found for unknown hall, got %v", err)
	}
}

func TestImportStateClearsOrphanedClaims(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	snapshot := store.ExportState()
	phone := "08030000001"
	for key, bed := range snapshot.Beds {
		bed.OccupantPhone = &phone // no such camper
		snapshot.Beds[key] = bed
	}

	restored := NewStore(domain.NewRulesEngine())
	restored.ImportState(snapshot)
	for _, bed := range restored.ListBeds() {
		if bed.Occupied() {
			t.Fatalf("orphaned claim on %s survived import", bed.Ref())
		}
	}
}

func TestImportStateClearsDanglingExtraRef(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))
	mustCreateHall(t, store, newHall("Annex", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	primary := domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}
	extra := domain.BedRef{HallName: "Annex", Floor: 1, Number: 1}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		ref := primary
		if _, err := tx.CreateCamper(domain.Camper{
			PhoneNumber: "08030000001",
			Status:      domain.StatusPending,
			PrimaryBed:  &ref,
			ExtraBeds:   []domain.BedRef{extra},
		}); err != nil {
			return err
		}
		if err := tx.ReserveBed(primary, "08030000001"); err != nil {
			return err
		}
		return tx.ReserveBed(extra, "08030000001")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Simulate a snapshot taken before the Annex was decommissioned.
	snapshot := store.ExportState()
	delete(snapshot.Halls, domain.NormalizeHallName("Annex"))

	restored := NewStore(domain.NewRulesEngine())
	restored.ImportState(snapshot)

	camper, ok := restored.GetCamper("08030000001")
	if !ok {
		t.Fatalf("camper missing after import")
	}
	if camper.PrimaryBed == nil || *camper.PrimaryBed != primary {
		t.Fatalf("primary claim lost: %+v", camper.PrimaryBed)
	}
	if len(camper.ExtraBeds) != 0 {
		t.Fatalf("dangling extra ref survived import: %+v", camper.ExtraBeds)
	}
	for _, bed := range restored.ListBeds() {
		if bed.HallName == "Annex" {
			t.Fatalf("bed %s survived its hall", bed.Ref())
		}
	}
}

func TestDeleteCamperGuardedByBeds(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	mustCreateHall(t, store, newHall("Zion Hall", domain.GenderFemale, domain.Floor{Number: 1, BedCount: 1}))

	ref := domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		primary := ref
		if _, err := tx.CreateCamper(domain.Camper{PhoneNumber: "08030000001", PrimaryBed: &primary}); err != nil {
			return err
		}
		return tx.ReserveBed(ref, "08030000001")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteCamper("08030000001")
	}); err == nil {
		t.Fatalf("expected delete to fail while camper holds a bed")
	}
}
