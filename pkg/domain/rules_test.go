package domain

import (
	"context"
	"errors"
	"testing"
)

type stubView struct{}

func (stubView) ListHalls() []Hall                  { return nil }
func (stubView) ListBeds() []Bed                    { return nil }
func (stubView) ListCampers() []Camper              { return nil }
func (stubView) ListCategories() []Category         { return nil }
func (stubView) FindHall(string) (Hall, bool)       { return Hall{}, false }
func (stubView) FindBed(BedRef) (Bed, bool)         { return Bed{}, false }
func (stubView) FindCamper(string) (Camper, bool)   { return Camper{}, false }
func (stubView) FindCategory(string) (Category, bool) { return Category{}, false }

type stubRule struct {
	name string
	res  Result
	err  error
}

func (r stubRule) Name() string { return r.name }
func (r stubRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.res, r.err
}

func TestRulesEngineAggregatesResults(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", res: Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}}})
	engine.Register(stubRule{name: "b", res: Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), stubView{}, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	engine := NewRulesEngine()
	engine.Register(stubRule{name: "a", err: boom})
	engine.Register(stubRule{name: "b", res: Result{Violations: []Violation{{Rule: "b"}}}})

	res, err := engine.Evaluate(context.Background(), stubView{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected rule error, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("expected empty result on error, got %+v", res)
	}
}
