package core

import (
	"context"

	"campcore/pkg/domain"
)

// Verify confirms a camper's in-person arrival. The camper must already hold
// a primary bed; verifying an already-verified camper is a no-op success.
// There is no transition back to pending through this path.
func (s *Service) Verify(ctx context.Context, phone string) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "verify")
	var verified Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		camper, ok := tx.FindCamper(phone)
		if !ok {
			return domain.NewEntityError(domain.KindNotFound, EntityCamper, phone)
		}
		if camper.Status == StatusVerified {
			verified = camper
			return nil
		}
		if camper.Status == StatusSuperseded {
			return domain.NewError(domain.KindConflict, "camper %q was superseded and cannot be verified", phone)
		}
		if camper.PrimaryBed == nil {
			return domain.NewError(domain.KindNotAllocated, "camper %q holds no bed", phone)
		}
		var err error
		verified, err = tx.UpdateCamper(phone, func(c *Camper) error {
			c.Status = StatusVerified
			return nil
		})
		return err
	})
	done(err)
	return verified, res, err
}

// RevokeVerification is the distinct administrative action returning a
// verified camper to pending. It is deliberately not part of the
// verification state machine.
func (s *Service) RevokeVerification(ctx context.Context, phone string) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "revoke_verification")
	var updated Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		camper, ok := tx.FindCamper(phone)
		if !ok {
			return domain.NewEntityError(domain.KindNotFound, EntityCamper, phone)
		}
		if camper.Status != StatusVerified {
			return domain.NewError(domain.KindConflict, "camper %q is %s, not verified", phone, camper.Status)
		}
		var err error
		updated, err = tx.UpdateCamper(phone, func(c *Camper) error {
			c.Status = StatusPending
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}
