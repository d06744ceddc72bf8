package multiblog

import (
	"context"
	"strings"
)

// SiteQuery selects the tenant whose slug OR custom domain equals Identifier.
// Callers never need to know which alias form they hold.
type SiteQuery struct {
	Identifier string
}

// NewSiteQuery normalizes identifier into a query.
func NewSiteQuery(identifier string) SiteQuery {
	return SiteQuery{Identifier: strings.ToLower(strings.TrimSpace(identifier))}
}

// Matches reports whether t satisfies the query.
func (q SiteQuery) Matches(t Tenant) bool {
	if q.Identifier == "" {
		return false
	}
	return t.Slug == q.Identifier || (t.CustomDomain != "" && t.CustomDomain == q.Identifier)
}

// TenantStore is the relational tenant lookup.
type TenantStore interface {
	// FindTenant returns the tenant matching q, or ErrTenantNotFound.
	FindTenant(ctx context.Context, q SiteQuery) (Tenant, error)
	// ListTenants returns every known tenant.
	ListTenants(ctx context.Context) ([]Tenant, error)
}
