// Package config loads the camp definition file: residential halls with
// their floor layouts, and the category catalog driving profile inference.
// The file is parsed and validated before any of it reaches storage.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"campcore/pkg/domain"
)

// DefaultPath is used when CAMPCORE_CONFIG_PATH is unset.
const DefaultPath = "campcore.toml"

// Config is the parsed camp definition.
type Config struct {
	Camp       CampConfig       `toml:"camp"`
	Halls      []HallConfig     `toml:"halls"`
	Categories []CategoryConfig `toml:"categories"`
}

// CampConfig holds camp-wide presentation fields used on tickets and reports.
type CampConfig struct {
	Name    string `toml:"name"`
	Edition string `toml:"edition"`
}

// HallConfig declares a hall and its floor layout. Floors are listed in
// ascending order; bed numbers within a floor run from 1 to bed_count.
type HallConfig struct {
	Name   string        `toml:"name"`
	Gender string        `toml:"gender"`
	Floors []FloorConfig `toml:"floors"`
}

// FloorConfig declares one floor of a hall.
type FloorConfig struct {
	Number   int `toml:"number"`
	BedCount int `toml:"bed_count"`
}

// CategoryConfig declares a catalog entry. Empty fields stay empty in the
// inferred profile; extra_beds grants additional beds at allocation time.
type CategoryConfig struct {
	Name          string `toml:"name"`
	Gender        string `toml:"gender"`
	MaritalStatus string `toml:"marital_status"`
	AgeRange      string `toml:"age_range"`
	Country       string `toml:"country"`
	ExtraBeds     int    `toml:"extra_beds"`
}

// PathFromEnv resolves the config file path from the environment.
func PathFromEnv() string {
	if path := strings.TrimSpace(os.Getenv("CAMPCORE_CONFIG_PATH")); path != "" {
		return path
	}
	return DefaultPath
}

// Load parses and validates the camp definition at path.
func Load(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load camp config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("load camp config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load camp config: %w", err)
	}
	return cfg, nil
}

// Validate checks hall and catalog consistency. It rejects duplicate hall
// names (after normalization), duplicate floor numbers, non-positive bed
// counts, unknown genders, and duplicate category names.
func (c Config) Validate() error {
	if len(c.Halls) == 0 {
		return fmt.Errorf("no halls defined")
	}
	hallNames := make(map[string]struct{}, len(c.Halls))
	for _, hall := range c.Halls {
		if strings.TrimSpace(hall.Name) == "" {
			return fmt.Errorf("hall with empty name")
		}
		key := domain.NormalizeHallName(hall.Name)
		if _, dup := hallNames[key]; dup {
			return fmt.Errorf("duplicate hall %q", hall.Name)
		}
		hallNames[key] = struct{}{}
		if err := validateGender(hall.Gender); err != nil {
			return fmt.Errorf("hall %q: %w", hall.Name, err)
		}
		if len(hall.Floors) == 0 {
			return fmt.Errorf("hall %q has no floors", hall.Name)
		}
		floorNumbers := make(map[int]struct{}, len(hall.Floors))
		for _, floor := range hall.Floors {
			if floor.Number < 1 {
				return fmt.Errorf("hall %q: floor number %d must be positive", hall.Name, floor.Number)
			}
			if _, dup := floorNumbers[floor.Number]; dup {
				return fmt.Errorf("hall %q: duplicate floor %d", hall.Name, floor.Number)
			}
			floorNumbers[floor.Number] = struct{}{}
			if floor.BedCount < 1 {
				return fmt.Errorf("hall %q floor %d: bed count %d must be positive", hall.Name, floor.Number, floor.BedCount)
			}
		}
	}

	categoryNames := make(map[string]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf("category with empty name")
		}
		key := strings.ToLower(strings.TrimSpace(category.Name))
		if _, dup := categoryNames[key]; dup {
			return fmt.Errorf("duplicate category %q", category.Name)
		}
		categoryNames[key] = struct{}{}
		if category.Gender != "" {
			if err := validateGender(category.Gender); err != nil {
				return fmt.Errorf("category %q: %w", category.Name, err)
			}
		}
		if category.ExtraBeds < 0 {
			return fmt.Errorf("category %q: extra beds %d must not be negative", category.Name, category.ExtraBeds)
		}
	}
	return nil
}

func validateGender(raw string) error {
	switch domain.Gender(raw) {
	case domain.GenderMale, domain.GenderFemale:
		return nil
	}
	return fmt.Errorf("unknown gender %q", raw)
}

// Hall converts the declaration to its domain entity.
func (h HallConfig) Hall() domain.Hall {
	floors := make([]domain.Floor, 0, len(h.Floors))
	for _, floor := range h.Floors {
		floors = append(floors, domain.Floor{
			HallName: h.Name,
			Number:   floor.Number,
			BedCount: floor.BedCount,
		})
	}
	return domain.Hall{
		Name:   h.Name,
		Gender: domain.Gender(h.Gender),
		Floors: floors,
	}
}

// Category converts the declaration to its domain entity.
func (c CategoryConfig) Category() domain.Category {
	return domain.Category{
		Name:          c.Name,
		Gender:        domain.Gender(c.Gender),
		MaritalStatus: c.MaritalStatus,
		AgeRange:      c.AgeRange,
		Country:       c.Country,
		ExtraBeds:     c.ExtraBeds,
	}
}
