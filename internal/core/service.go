package core

import (
	"context"
	"strings"
	"time"

	"campcore/pkg/domain"
)

// Service exposes the transactional bedspace operations: registration,
// allocation, verification, and transfer.
type Service struct {
	store   PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// Option customizes service construction.
type Option func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder to the service.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer attaches a tracer to the service.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithNowFunc overrides the service clock. Intended for tests.
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given rules engine.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	return NewService(newMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

// CreateHall persists a hall and materializes its bed inventory.
func (s *Service) CreateHall(ctx context.Context, hall Hall) (Hall, Result, error) {
	ctx, done := s.instrument(ctx, "create_hall")
	var created Hall
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateHall(hall)
		return err
	})
	done(err)
	return created, res, err
}

// AddCategory registers a category definition in the catalog.
func (s *Service) AddCategory(ctx context.Context, category Category) (Category, Result, error) {
	ctx, done := s.instrument(ctx, "add_category")
	var created Category
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		created, err = tx.CreateCategory(category)
		return err
	})
	done(err)
	return created, res, err
}

// RemoveCategory deletes a category from the catalog. Campers already
// registered under it keep their stored demographic fields.
func (s *Service) RemoveCategory(ctx context.Context, name string) (Result, error) {
	ctx, done := s.instrument(ctx, "remove_category")
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteCategory(name)
	})
	done(err)
	return res, err
}

// Categories lists the catalog.
func (s *Service) Categories() []Category {
	return s.store.ListCategories()
}

// Infer derives the demographic profile for a category selection. Unknown
// names fail with KindUnknownCategory; callers never proceed with an empty
// profile.
func (s *Service) Infer(ctx context.Context, categoryName string) (Profile, error) {
	var profile Profile
	err := s.store.View(ctx, func(view RuleView) error {
		category, ok := view.FindCategory(categoryName)
		if !ok {
			return domain.NewEntityError(domain.KindUnknownCategory, EntityCategory, categoryName)
		}
		profile = Profile{
			Gender:        category.Gender,
			MaritalStatus: category.MaritalStatus,
			AgeRange:      category.AgeRange,
			Country:       category.Country,
		}
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// RegisterCamper persists a new unallocated camper. Category defaults fill
// any demographic field the caller left empty; fields the caller edited after
// inference are kept as submitted. Defaults are applied here, at registration
// time, and never re-read afterwards.
func (s *Service) RegisterCamper(ctx context.Context, camper Camper) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "register_camper")
	var created Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		category, ok := tx.FindCategory(camper.Category)
		if !ok {
			return domain.NewEntityError(domain.KindUnknownCategory, EntityCategory, camper.Category)
		}
		applyCategoryDefaults(&camper, category)
		camper.Status = StatusPending
		camper.PrimaryBed = nil
		camper.ExtraBeds = nil
		var err error
		created, err = tx.CreateCamper(camper)
		return err
	})
	done(err)
	return created, res, err
}

// ChangeCategory re-runs inference for a new category selection. Previously
// derived fields are overwritten with the new defaults; last write wins.
func (s *Service) ChangeCategory(ctx context.Context, phone, categoryName string) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "change_category")
	var updated Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		category, ok := tx.FindCategory(categoryName)
		if !ok {
			return domain.NewEntityError(domain.KindUnknownCategory, EntityCategory, categoryName)
		}
		var err error
		updated, err = tx.UpdateCamper(phone, func(c *Camper) error {
			c.Category = category.Name
			c.ApplyProfile(Profile{
				Gender:        category.Gender,
				MaritalStatus: category.MaritalStatus,
				AgeRange:      category.AgeRange,
				Country:       category.Country,
			})
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// AttachPhoto records the URL of an externally stored profile photograph.
// The engine never inspects image bytes.
func (s *Service) AttachPhoto(ctx context.Context, phone, url string) (Camper, Result, error) {
	ctx, done := s.instrument(ctx, "attach_photo")
	var updated Camper
	res, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateCamper(phone, func(c *Camper) error {
			c.PhotoURL = &url
			return nil
		})
		return err
	})
	done(err)
	return updated, res, err
}

// GetCamper returns a camper by phone number.
func (s *Service) GetCamper(phone string) (Camper, bool) {
	return s.store.GetCamper(phone)
}

// ActiveCampers returns campers whose status participates in occupancy
// accounting, excluding superseded audit records.
func (s *Service) ActiveCampers() []Camper {
	all := s.store.ListCampers()
	out := make([]Camper, 0, len(all))
	for _, c := range all {
		if c.Status.Active() {
			out = append(out, c)
		}
	}
	return out
}

// OccupancySummary recomputes hall occupancy from bed state.
func (s *Service) OccupancySummary(ctx context.Context, hallName string) (OccupancySummary, error) {
	_, done := s.instrument(ctx, "occupancy_summary")
	summary, err := s.store.OccupancySummary(hallName)
	done(err)
	return summary, err
}

// applyCategoryDefaults fills empty demographic fields from the category.
func applyCategoryDefaults(camper *Camper, category Category) {
	if camper.Gender == "" {
		camper.Gender = category.Gender
	}
	if strings.TrimSpace(camper.MaritalStatus) == "" {
		camper.MaritalStatus = category.MaritalStatus
	}
	if strings.TrimSpace(camper.AgeRange) == "" {
		camper.AgeRange = category.AgeRange
	}
	if strings.TrimSpace(camper.Country) == "" {
		camper.Country = category.Country
	}
}
