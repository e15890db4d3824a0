package counters

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"numera/internal/core/apperror"
	"numera/pkg/logger"
)

var tracer = otel.Tracer("numera/counters")

// Service allocates formatted counter values. It orchestrates definition
// lookup, scope/period resolution, the atomic store increment and the
// segment formatting pipeline.
type Service struct {
	defs      DefinitionSource
	store     ValueStore
	companies CompanyResolver
	cfg       Config
}

// Ensure compile-time interface compliance.
var _ Allocator = (*Service)(nil)

// NewService creates a counter allocation service.
// companies may be nil when no company-level definitions exist; allocating
// against one then fails with a scope resolution error.
func NewService(defs DefinitionSource, store ValueStore, companies CompanyResolver, cfg Config) *Service {
	return &Service{
		defs:      defs,
		store:     store,
		companies: companies,
		cfg:       cfg,
	}
}

// Next allocates and formats the next identifier for req.CounterCode.
//
// The store increment commits before formatting runs. A failure after that
// point (exhausted width, numeric coercion) therefore consumes the value:
// gaps are the accepted failure mode, duplicates are not. Callers retrying
// after such a failure get a fresh value, never the skipped one.
func (s *Service) Next(ctx context.Context, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "counters.next",
		trace.WithAttributes(attribute.String("counter.code", req.CounterCode)))
	defer span.End()

	start := time.Now()
	formatted, err := s.next(ctx, req)
	observeAllocation(err, time.Since(start))

	if err != nil {
		logger.Warn(ctx, "counter allocation failed",
			"counter", req.CounterCode,
			"site", req.Site,
			"error", err,
		)
		return "", err
	}

	logger.Debug(ctx, "counter allocated",
		"counter", req.CounterCode,
		"value", formatted,
	)
	return formatted, nil
}

func (s *Service) next(ctx context.Context, req Request) (string, error) {
	def, err := s.defs.Get(ctx, req.CounterCode)
	if err != nil {
		return "", err
	}
	if err := def.Validate(ctx); err != nil {
		return "", err
	}
	if len(def.Segments) > s.cfg.MaxSegments {
		return "", apperror.NewValidation("definition exceeds the segment limit").
			WithDetail("counter", def.Code).
			WithDetail("segments", len(def.Segments)).
			WithDetail("max", s.cfg.MaxSegments)
	}

	// A definition without a sequence segment cannot embed the allocated
	// value anywhere. The legacy system returned an empty identifier;
	// here the allocation is rejected before any value is consumed.
	if _, ok := def.SequenceIndex(); !ok {
		return "", apperror.NewValidation("definition has no sequence segment").
			WithDetail("counter", def.Code)
	}

	// Unsanctioned complements are discarded, not embedded.
	complement := req.Complement
	if !def.HasComplement() {
		complement = ""
	}

	date := req.Date
	if date.IsZero() {
		date = s.cfg.LegacyEpoch
	}

	period, err := ResolvePeriod(def.ResetPolicy, date)
	if err != nil {
		return "", err
	}

	scope, err := s.resolveScope(ctx, def.Level, req.Site)
	if err != nil {
		return "", err
	}

	value, err := s.store.Allocate(ctx, Key{
		Code:       def.Code,
		Scope:      scope,
		Period:     period,
		Complement: complement,
	})
	if err != nil {
		return "", err
	}

	return assemble(def, formatContext{
		date:       date,
		scope:      scope,
		complement: complement,
		sequence:   value,
		padRune:    s.cfg.PadRune,
	})
}

// resolveScope computes the scope key partitioning the sequence space.
func (s *Service) resolveScope(ctx context.Context, level DefinitionLevel, site string) (string, error) {
	switch level {
	case LevelFolder:
		return "", nil
	case LevelSite:
		return site, nil
	case LevelCompany:
		if site == "" {
			return "", apperror.NewScopeResolution(site).
				WithDetail("reason", "site is required for company-level counters")
		}
		if s.companies == nil {
			return "", apperror.NewScopeResolution(site).
				WithDetail("reason", "no company resolver configured")
		}
		company, err := s.companies.CompanyForSite(ctx, site)
		if err != nil {
			if apperror.IsNotFound(err) {
				return "", apperror.NewScopeResolution(site).WithCause(err)
			}
			return "", err
		}
		return company, nil
	default:
		return "", apperror.NewValidation("unknown definition level").
			WithDetail("value", int(level))
	}
}
