package multiblog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Store is the relational tenant store. It runs on SQLite (default) or
// Postgres through the pgx stdlib driver.
type Store struct {
	db        *sql.DB
	driver    string
	afterSave []func(context.Context, Tenant)
}

// NewStore opens (or creates) the tenant database and ensures the schema.
// For SQLite, dsn is a file path whose directory is created if needed.
func NewStore(driver, dsn string) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	case DriverPostgres, "postgres":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// WAL lets readers proceed during the occasional out-of-band write.
		if _, err := db.Exec(`
			PRAGMA journal_mode=WAL;
			PRAGMA busy_timeout=5000;
			PRAGMA synchronous=NORMAL;
		`); err != nil {
			db.Close()
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	s := &Store{db: db, driver: driver}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// AfterSave registers fn to run after every successful SaveTenant with the
// saved tenant. Register hooks before the store is shared between goroutines.
func (s *Store) AfterSave(fn func(ctx context.Context, t Tenant)) {
	s.afterSave = append(s.afterSave, fn)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS tenants (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    custom_domain TEXT UNIQUE,
    name TEXT NOT NULL DEFAULT '',
    content_source_id TEXT NOT NULL,
    settings TEXT NOT NULL DEFAULT '{}',
    updated_at TEXT NOT NULL DEFAULT ''
)`)
	return err
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const tenantColumns = `id, slug, custom_domain, name, content_source_id, settings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (Tenant, error) {
	var t Tenant
	var domain sql.NullString
	if err := row.Scan(&t.ID, &t.Slug, &domain, &t.Name, &t.ContentSourceID, &t.SettingsRaw); err != nil {
		return Tenant{}, err
	}
	t.CustomDomain = domain.String
	t.Settings = ParseSettings(t.SettingsRaw)
	return t, nil
}

// FindTenant returns the tenant whose slug or custom domain equals the query
// identifier. Both aliases are matched by one statement; a slug match wins
// over a custom-domain match.
func (s *Store) FindTenant(ctx context.Context, q SiteQuery) (Tenant, error) {
	if q.Identifier == "" {
		return Tenant{}, ErrTenantNotFound
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+tenantColumns+` FROM tenants
		WHERE slug = ? OR custom_domain = ?
		ORDER BY CASE WHEN slug = ? THEN 0 ELSE 1 END
		LIMIT 1`), q.Identifier, q.Identifier, q.Identifier)
	t, err := scanTenant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("find tenant %q: %w", q.Identifier, err)
	}
	return t, nil
}

// ListTenants returns every tenant ordered by slug.
func (s *Store) ListTenants(ctx context.Context) ([]Tenant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// SaveTenant upserts a tenant. It is used by out-of-band administration only;
// the resolution core never writes. A missing ID is generated. The saved
// tenant is returned.
func (s *Store) SaveTenant(ctx context.Context, t Tenant) (Tenant, error) {
	t.Slug = strings.ToLower(strings.TrimSpace(t.Slug))
	t.CustomDomain = strings.ToLower(strings.TrimSpace(t.CustomDomain))
	if t.Slug == "" {
		return Tenant{}, errors.New("save tenant: slug is required")
	}
	if strings.TrimSpace(t.ContentSourceID) == "" {
		return Tenant{}, errors.New("save tenant: content source id is required")
	}
	if strings.TrimSpace(t.SettingsRaw) == "" {
		t.SettingsRaw = "{}"
	}
	if err := ValidateSettings(t.SettingsRaw); err != nil {
		return Tenant{}, fmt.Errorf("save tenant %q: %w", t.Slug, err)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	var domain sql.NullString
	if t.CustomDomain != "" {
		domain = sql.NullString{String: t.CustomDomain, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO tenants (id, slug, custom_domain, name, content_source_id, settings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			slug = excluded.slug,
			custom_domain = excluded.custom_domain,
			name = excluded.name,
			content_source_id = excluded.content_source_id,
			settings = excluded.settings,
			updated_at = excluded.updated_at`),
		t.ID, t.Slug, domain, t.Name, t.ContentSourceID, t.SettingsRaw, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Tenant{}, fmt.Errorf("save tenant %q: %w", t.Slug, err)
	}
	t.Settings = ParseSettings(t.SettingsRaw)
	for _, fn := range s.afterSave {
		fn(ctx, t)
	}
	return t, nil
}

// DeleteTenant removes a tenant by ID.
func (s *Store) DeleteTenant(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tenants WHERE id = ?`), id)
	return err
}
