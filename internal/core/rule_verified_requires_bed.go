package core

import (
	"context"
	"fmt"

	"campcore/pkg/domain"
)

// NewVerifiedRequiresBedRule returns the default rule ensuring no camper
// reaches the verified state without a primary bed claim.
func NewVerifiedRequiresBedRule() domain.Rule {
	return verifiedRequiresBedRule{}
}

type verifiedRequiresBedRule struct{}

func (verifiedRequiresBedRule) Name() string { return "verified_requires_bed" }

func (verifiedRequiresBedRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, camper := range view.ListCampers() {
		if camper.Status == domain.StatusVerified && camper.PrimaryBed == nil {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "verified_requires_bed",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("camper %s is verified without a bed allocation", camper.PhoneNumber),
				Entity:   domain.EntityCamper,
				EntityID: camper.PhoneNumber,
			})
		}
	}
	return res, nil
}
