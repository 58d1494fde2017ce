// Package pgtest provisions a throwaway Postgres schema per test, migrated
// with the up scripts under migrations/. Tests skip when TEST_POSTGRES_DSN
// is unset.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"zk-porrinha/internal/config"
)

// maxMigrationDepth bounds the upward search for migrations/ from the test's
// working directory.
const maxMigrationDepth = 6

// Schema is a migrated schema private to one test. DSN pins search_path to it.
type Schema struct {
	Name string
	DSN  string
}

// New creates the schema, applies every migration and drops the schema when
// the test finishes.
func New(t *testing.T) Schema {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip postgres: %v", err)
	}
	ctx := context.Background()
	name := "porrinha_" + strings.ToLower(ulid.Make().String())
	ident := pgx.Identifier{name}.Sanitize()

	admin, err := pgxpool.New(ctx, cfg.TestPostgresDSN)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	defer admin.Close()
	if _, err := admin.Exec(ctx, "CREATE SCHEMA "+ident); err != nil {
		t.Fatalf("create schema %s: %v", name, err)
	}
	t.Cleanup(func() {
		pool, err := pgxpool.New(context.Background(), cfg.TestPostgresDSN)
		if err != nil {
			return
		}
		defer pool.Close()
		_, _ = pool.Exec(context.Background(), "DROP SCHEMA "+ident+" CASCADE")
	})

	s := Schema{Name: name, DSN: withSearchPath(cfg.TestPostgresDSN, name)}
	if err := migrate(ctx, s.DSN); err != nil {
		t.Fatalf("migrate %s: %v", name, err)
	}
	return s
}

func migrate(ctx context.Context, dsn string) error {
	scripts, err := upScripts()
	if err != nil {
		return err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	for _, path := range scripts {
		sql, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return errors.Wrapf(err, "apply %s", filepath.Base(path))
		}
	}
	return nil
}

// upScripts returns the *.up.sql files of the nearest migrations/ directory,
// in version order.
func upScripts() ([]string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxMigrationDepth; i++ {
		matches, err := filepath.Glob(filepath.Join(dir, "migrations", "*.up.sql"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, fmt.Errorf("no migrations found above %s", dir)
}

func withSearchPath(dsn, schema string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// key=value form
		return dsn + " search_path=" + schema
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}
