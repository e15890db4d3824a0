package counter_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"numera/internal/core/apperror"
	"numera/internal/domain/counters"
)

const siteTable = "sites"

// SiteRepo resolves a site code to its owning company, for company-level
// counter definitions. The legacy implementation left this lookup
// unwritten and fell through to an empty scope; here an unknown site is a
// hard NotFound so company counters never silently share the folder scope.
type SiteRepo struct {
	db DB
}

// Ensure compile-time interface compliance.
var _ counters.CompanyResolver = (*SiteRepo)(nil)

// NewSiteRepo creates a site directory repository.
func NewSiteRepo(db DB) *SiteRepo {
	return &SiteRepo{db: db}
}

// CompanyForSite returns the company code owning the given site.
func (r *SiteRepo) CompanyForSite(ctx context.Context, site string) (string, error) {
	q := builder().
		Select("company_code").
		From(siteTable).
		Where(squirrel.Eq{"code": site})

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var company string
	querier := r.db.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &company, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return "", apperror.NewNotFound("site", site)
		}
		return "", apperror.NewDatabase("resolve site company", err).
			WithDetail("site", site)
	}

	return company, nil
}

// Save upserts a site row. Used by the seed tool.
func (r *SiteRepo) Save(ctx context.Context, code, name, companyCode string) error {
	querier := r.db.GetQuerier(ctx)

	_, err := querier.Exec(ctx, `
		INSERT INTO sites (code, name, company_code)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, company_code = EXCLUDED.company_code
	`, code, name, companyCode)
	if err != nil {
		return apperror.NewDatabase("save site", err).WithDetail("site", code)
	}

	return nil
}
