// Package testenv opens throwaway databases for repository, service and handler tests.
package testenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elkhamyyali/ecommerceback/internal/models"
	pkgdb "github.com/elkhamyyali/ecommerceback/pkg/db"
)

// DB returns a migrated database. TEST_DATABASE_URL selects a shared PostgreSQL
// instance (tables are truncated on cleanup); otherwise a SQLite file in t.TempDir() is used.
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	shared := dsn != ""
	if !shared {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
			filepath.Join(t.TempDir(), "test.db"))
	}

	db, err := pkgdb.Open(context.Background(), dsn, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	if shared {
		truncate(db)
	}
	t.Cleanup(func() {
		if shared {
			truncate(db)
		}
		_ = pkgdb.Close(db)
	})

	return db
}

func truncate(db *gorm.DB) {
	tables := []string{
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"counters",
		"products",
		"users",
	}
	db.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", ")))
}
