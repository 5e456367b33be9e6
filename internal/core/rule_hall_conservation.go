package core

import (
	"context"
	"fmt"

	"campcore/pkg/domain"
)

// NewHallConservationRule returns the default in-transaction rule checking
// that each hall's bed total equals the sum of its floors and that every bed
// resolves to a configured hall and floor.
func NewHallConservationRule() domain.Rule {
	return hallConservationRule{}
}

type hallConservationRule struct{}

func (hallConservationRule) Name() string { return "hall_conservation" }

func (hallConservationRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	floors := make(map[string]map[int]int) // hall key -> floor number -> bed count
	for _, hall := range view.ListHalls() {
		sum := 0
		byFloor := make(map[int]int, len(hall.Floors))
		for _, floor := range hall.Floors {
			sum += floor.BedCount
			byFloor[floor.Number] = floor.BedCount
		}
		floors[hall.Key()] = byFloor
		if sum != hall.TotalBeds {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "hall_conservation",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("hall %s total %d does not match floor sum %d", hall.Name, hall.TotalBeds, sum),
				Entity:   domain.EntityHall,
				EntityID: hall.Key(),
			})
		}
	}

	for _, bed := range view.ListBeds() {
		byFloor, ok := floors[domain.NormalizeHallName(bed.HallName)]
		if !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "hall_conservation",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("bed %s belongs to unknown hall %q", bed.Ref(), bed.HallName),
				Entity:   domain.EntityBed,
				EntityID: bed.Ref().Key(),
			})
			continue
		}
		count, ok := byFloor[bed.Floor]
		if !ok || bed.Number < 1 || bed.Number > count {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "hall_conservation",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("bed %s is outside the configured floor layout", bed.Ref()),
				Entity:   domain.EntityBed,
				EntityID: bed.Ref().Key(),
			})
		}
	}

	return res, nil
}
