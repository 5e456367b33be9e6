package core

import (
	"context"

	"campcore/pkg/domain"
)

// Transfer grants a no-show camper's reserved bed(s) to a new walk-in without
// releasing them back to general search, as a single transaction:
//
//  1. The source camper must exist, be pending, and hold a primary bed.
//  2. The walk-in is registered with category inference but no bed search.
//  3. The exact coordinates (primary plus extras) move to the walk-in.
//  4. The source's refs are cleared and its record marked superseded.
//
// Any failure aborts the whole transaction: no walk-in record persists and
// the source camper is left untouched. Because the handover happens inside
// one commit, there is no window where the beds look free to a concurrent
// allocation.
func (s *Service) Transfer(ctx context.Context, sourcePhone string, walkIn Camper) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "transfer")
	var created Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		source, ok := tx.FindCamper(sourcePhone)
		if !ok {
			return domain.NewEntityError(domain.KindNotFound, EntityCamper, sourcePhone)
		}
		if source.Status != StatusPending {
			return domain.NewError(domain.KindNotOccupied, "camper %q is %s; only pending campers are transferable", sourcePhone, source.Status)
		}
		if source.PrimaryBed == nil {
			return domain.NewError(domain.KindNotOccupied, "camper %q holds no bed to transfer", sourcePhone)
		}

		category, ok := tx.FindCategory(walkIn.Category)
		if !ok {
			return domain.NewEntityError(domain.KindUnknownCategory, EntityCategory, walkIn.Category)
		}
		applyCategoryDefaults(&walkIn, category)
		walkIn.Status = StatusPending

		refs := source.BedRefs()
		for _, ref := range refs {
			bed, ok := tx.FindBed(ref)
			if !ok {
				return domain.NewEntityError(domain.KindNotFound, EntityBed, ref.String())
			}
			if bed.OccupantPhone == nil || *bed.OccupantPhone != sourcePhone {
				return domain.NewError(domain.KindNotOccupied, "bed %s is no longer held by %q", ref, sourcePhone)
			}
		}

		primary := *source.PrimaryBed
		walkIn.PrimaryBed = &primary
		walkIn.ExtraBeds = append([]BedRef(nil), source.ExtraBeds...)
		var err error
		created, err = tx.CreateCamper(walkIn)
		if err != nil {
			return err
		}

		// Release-then-reserve per bed stays inside this transaction, so
		// the beds are never observable as free.
		for _, ref := range refs {
			if err := tx.ReleaseBed(ref, false); err != nil {
				return err
			}
			if err := tx.ReserveBed(ref, created.PhoneNumber); err != nil {
				return err
			}
		}

		_, err = tx.UpdateCamper(sourcePhone, func(c *Camper) error {
			c.PrimaryBed = nil
			c.ExtraBeds = nil
			c.Status = StatusSuperseded
			return nil
		})
		return err
	})
	done(err)
	if err != nil {
		return Camper{}, res, err
	}
	s.logger.Info("bed transferred",
		"from", sourcePhone,
		"to", created.PhoneNumber,
		"bed", created.PrimaryBed.String(),
		"extra_beds", len(created.ExtraBeds))
	return created, res, nil
}
