package core

import (
	"context"
	"strings"

	"campcore/pkg/domain"
)

// AllocationResult reports the beds granted by a successful allocation.
type AllocationResult struct {
	PhoneNumber string   `json:"phone_number"`
	PrimaryBed  BedRef   `json:"primary_bed"`
	ExtraBeds   []BedRef `json:"extra_beds,omitempty"`
}

func missingProfileFields(c Camper) []string {
	var missing []string
	if strings.TrimSpace(c.Category) == "" {
		missing = append(missing, "category")
	}
	if c.Gender == "" {
		missing = append(missing, "gender")
	}
	if strings.TrimSpace(c.AgeRange) == "" {
		missing = append(missing, "age_range")
	}
	if strings.TrimSpace(c.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(c.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(c.ArrivalDate) == "" {
		missing = append(missing, "arrival_date")
	}
	return missing
}

// Allocate reserves a bed for the registered camper, plus any extra beds the
// camper's category requires. The whole grant commits atomically: an extra-bed
// failure after the primary succeeded rolls the primary back too.
func (s *Service) Allocate(ctx context.Context, phone string) (AllocationResult, Result, error) {
	ctx, done := s.instrument(ctx, "allocate")
	var allocated AllocationResult
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		camper, ok := tx.FindCamper(phone)
		if !ok {
			return domain.NewEntityError(domain.KindNotFound, EntityCamper, phone)
		}
		if !camper.Status.Active() {
			return domain.NewError(domain.KindConflict, "camper %q is %s and cannot be allocated", phone, camper.Status)
		}
		if camper.PrimaryBed != nil {
			allocated = AllocationResult{PhoneNumber: phone, PrimaryBed: *camper.PrimaryBed, ExtraBeds: camper.ExtraBeds}
			return nil
		}
		if missing := missingProfileFields(camper); len(missing) > 0 {
			return domain.NewError(domain.KindIncompleteProfile, "camper %q missing %s", phone, strings.Join(missing, ", "))
		}

		// The category may have been removed since registration; the
		// camper's stored fields stay valid and no extra beds apply.
		extraCount := 0
		if category, ok := tx.FindCategory(camper.Category); ok {
			extraCount = category.ExtraBeds
		}

		constraint := BedConstraint{Gender: camper.Gender}
		primary, err := reserveNext(tx, constraint, phone)
		if err != nil {
			return err
		}

		var extras []BedRef
		for i := 0; i < extraCount; i++ {
			// Beds reserved above are occupied within this
			// transaction, so the scan steps past them. Any failure
			// here aborts the transaction and the primary grant
			// never commits.
			ref, err := reserveNext(tx, constraint, phone)
			if err != nil {
				return err
			}
			extras = append(extras, ref)
		}

		if _, err := tx.UpdateCamper(phone, func(c *Camper) error {
			ref := primary
			c.PrimaryBed = &ref
			c.ExtraBeds = extras
			return nil
		}); err != nil {
			return err
		}
		allocated = AllocationResult{PhoneNumber: phone, PrimaryBed: primary, ExtraBeds: extras}
		return nil
	})
	done(err)
	if err != nil {
		return AllocationResult{}, res, err
	}
	s.logger.Info("bed allocated",
		"phone", allocated.PhoneNumber,
		"bed", allocated.PrimaryBed.String(),
		"extra_beds", len(allocated.ExtraBeds))
	return allocated, res, nil
}

// reserveNext scans for a free bed and claims it, retrying the scan exactly
// once when the claim conflicts. The scan result is never trusted as a
// guarantee: ReserveBed re-validates occupancy at claim time, which is what
// closes the window between an unsynchronized scan and the commit.
func reserveNext(tx Transaction, constraint BedConstraint, phone string) (BedRef, error) {
	ref, err := tx.FindAvailableBed(constraint)
	if err != nil {
		return BedRef{}, err
	}
	err = tx.ReserveBed(ref, phone)
	if err == nil {
		return ref, nil
	}
	if !domain.IsKind(err, domain.KindConflict) {
		return BedRef{}, err
	}
	retry, err := tx.FindAvailableBed(constraint)
	if err != nil {
		return BedRef{}, err
	}
	if err := tx.ReserveBed(retry, phone); err != nil {
		if domain.IsKind(err, domain.KindConflict) {
			return BedRef{}, domain.NewError(domain.KindAllocationRace, "bed %s contended twice for camper %q", retry, phone)
		}
		return BedRef{}, err
	}
	return retry, nil
}

// ReleaseCamperBeds frees every bed the camper holds and clears the refs.
// Used by administrative cancellation; transfer uses its own path. A
// verified camper must have verification revoked first: verified records
// are required to hold a bed.
func (s *Service) ReleaseCamperBeds(ctx context.Context, phone string) (Result, error) {
	ctx, done := s.instrument(ctx, "release_camper_beds")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		camper, ok := tx.FindCamper(phone)
		if !ok {
			return domain.NewEntityError(domain.KindNotFound, EntityCamper, phone)
		}
		if camper.Status == StatusVerified {
			return domain.NewError(domain.KindConflict, "camper %q is verified; revoke verification before releasing beds", phone)
		}
		if camper.PrimaryBed == nil {
			return domain.NewError(domain.KindNotOccupied, "camper %q holds no bed", phone)
		}
		for _, ref := range camper.BedRefs() {
			if err := tx.ReleaseBed(ref, false); err != nil {
				return err
			}
		}
		_, err := tx.UpdateCamper(phone, func(c *Camper) error {
			c.PrimaryBed = nil
			c.ExtraBeds = nil
			return nil
		})
		return err
	})
	done(err)
	return res, err
}
