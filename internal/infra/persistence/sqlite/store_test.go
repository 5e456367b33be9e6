package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"campcore/pkg/domain"
)

func TestSQLiteStorePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, e := tx.CreateHall(domain.Hall{
			Name: "Zion Hall", Gender: domain.GenderFemale,
			Floors: []domain.Floor{{Number: 1, BedCount: 2}},
		}); e != nil {
			return e
		}
		_, e := tx.CreateCamper(domain.Camper{PhoneNumber: "08030000001", FirstName: "Amara"})
		return e
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer func() { _ = reloaded.Close() }()

	if _, ok := reloaded.GetHall("Zion Hall"); !ok {
		t.Fatalf("hall lost across reload")
	}
	if got := len(reloaded.ListBeds()); got != 2 {
		t.Fatalf("expected 2 beds after reload, got %d", got)
	}
	if _, ok := reloaded.GetCamper("08030000001"); !ok {
		t.Fatalf("camper lost across reload")
	}
}

func TestSQLiteStoreReloadClearsOrphanedClaims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()

	// Reserve a bed for a camper, then supersede the camper directly; the
	// reload migration must clear the stale claim.
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, e := tx.CreateHall(domain.Hall{
			Name: "Zion Hall", Gender: domain.GenderFemale,
			Floors: []domain.Floor{{Number: 1, BedCount: 1}},
		}); e != nil {
			return e
		}
		if _, e := tx.CreateCamper(domain.Camper{PhoneNumber: "08030000001"}); e != nil {
			return e
		}
		return tx.ReserveBed(domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}, "08030000001")
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if e := tx.ReleaseBed(domain.BedRef{HallName: "Zion Hall", Floor: 1, Number: 1}, false); e != nil {
			return e
		}
		_, e := tx.UpdateCamper("08030000001", func(c *domain.Camper) error {
			c.Status = domain.StatusSuperseded
			return nil
		})
		return e
	}); err != nil {
		t.Fatalf("supersede: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	defer func() { _ = reloaded.Close() }()
	for _, bed := range reloaded.ListBeds() {
		if bed.Occupied() {
			t.Fatalf("stale claim survived reload: %s", bed.Ref())
		}
	}
}

func TestSQLiteStoreCreatesStateTable(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), domain.NewRulesEngine())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var name string
	if err := store.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='state'`).Scan(&name); err != nil {
		t.Fatalf("lookup state table: %v", err)
	}
	if name != "state" {
		t.Fatalf("expected state table, got %q", name)
	}
}
