package core

import (
	"context"
	"fmt"

	"campcore/pkg/domain"
)

// NewBedUniquenessRule returns the default in-transaction rule enforcing that
// every bed is claimed by at most one active camper and that bed occupancy and
// camper refs agree in both directions.
func NewBedUniquenessRule() domain.Rule {
	return bedUniquenessRule{}
}

type bedUniquenessRule struct{}

func (bedUniquenessRule) Name() string { return "bed_uniqueness" }

func (bedUniquenessRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	claims := make(map[string][]string)
	for _, camper := range view.ListCampers() {
		if !camper.Status.Active() {
			if camper.PrimaryBed != nil {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "bed_uniqueness",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("%s camper %s still references bed %s", camper.Status, camper.PhoneNumber, camper.PrimaryBed),
					Entity:   domain.EntityCamper,
					EntityID: camper.PhoneNumber,
				})
			}
			continue
		}
		for _, ref := range camper.BedRefs() {
			claims[ref.Key()] = append(claims[ref.Key()], camper.PhoneNumber)
		}
	}

	for key, phones := range claims {
		if len(phones) > 1 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "bed_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("bed %s claimed by %d campers", key, len(phones)),
				Entity:   domain.EntityBed,
				EntityID: key,
			})
		}
	}

	for _, bed := range view.ListBeds() {
		key := bed.Ref().Key()
		phones := claims[key]
		switch {
		case bed.OccupantPhone == nil && len(phones) > 0:
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "bed_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("bed %s is free but referenced by camper %s", bed.Ref(), phones[0]),
				Entity:   domain.EntityBed,
				EntityID: key,
			})
		case bed.OccupantPhone != nil && (len(phones) != 1 || phones[0] != *bed.OccupantPhone):
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "bed_uniqueness",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("bed %s occupant %s disagrees with camper references", bed.Ref(), *bed.OccupantPhone),
				Entity:   domain.EntityBed,
				EntityID: key,
			})
		}
	}

	return res, nil
}
