package core

import (
	"fmt"
	"os"

	"campcore/internal/infra/persistence/memory"
	"campcore/internal/infra/persistence/postgres"
	"campcore/internal/infra/persistence/sqlite"
	"campcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	Transaction     = domain.Transaction
	RuleView        = domain.RuleView
	PersistentStore = domain.PersistentStore
)

func newMemoryStore(engine *domain.RulesEngine) PersistentStore {
	return memory.NewStore(engine)
}

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	CAMPCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	CAMPCORE_SQLITE_PATH: path to sqlite file (default ./campcore.db)
//	CAMPCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *domain.RulesEngine) (PersistentStore, error) {
	driver := os.Getenv("CAMPCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		path := os.Getenv("CAMPCORE_SQLITE_PATH")
		return sqlite.NewStore(path, engine)
	case StoragePostgres:
		dsn := os.Getenv("CAMPCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
