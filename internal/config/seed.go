package config

import (
	"context"
	"fmt"

	"campcore/internal/core"
	"campcore/pkg/domain"
)

// Seed writes the configured halls and categories into the store. Records
// that already exist are left untouched so repeated startups against a
// persistent driver do not clobber live occupancy.
func Seed(ctx context.Context, svc *core.Service, cfg Config) error {
	for _, hall := range cfg.Halls {
		if _, _, err := svc.CreateHall(ctx, hall.Hall()); err != nil {
			if domain.IsKind(err, domain.KindAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed hall %q: %w", hall.Name, err)
		}
	}
	for _, category := range cfg.Categories {
		if _, _, err := svc.AddCategory(ctx, category.Category()); err != nil {
			if domain.IsKind(err, domain.KindAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed category %q: %w", category.Name, err)
		}
	}
	return nil
}
