package core

import "campcore/pkg/domain"

type (
	Rule        = domain.Rule
	RulesEngine = domain.RulesEngine
)

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewBedUniquenessRule())
	engine.Register(NewHallConservationRule())
	engine.Register(NewVerifiedRequiresBedRule())
	return engine
}
