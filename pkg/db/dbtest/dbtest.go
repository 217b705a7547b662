// Package dbtest opens throwaway databases for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db"
	"github.com/lawscheduling/lawscheduling-backend/pkg/db/models"
	"github.com/lawscheduling/lawscheduling-backend/pkg/migrate"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Open returns an in-memory sqlite database private to t with every model
// migrated. A single connection keeps the memory database alive and makes
// transactions serialize the way they would on one Postgres session.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return conn
}

// OpenSeeded is Open plus the static reference data.
func OpenSeeded(t *testing.T) *gorm.DB {
	t.Helper()
	conn := Open(t)
	if err := migrate.SeedReference(context.Background(), conn); err != nil {
		t.Fatalf("seed reference data: %v", err)
	}
	return conn
}

// Client wraps conn the way production code receives it.
func Client(conn *gorm.DB) *db.Client {
	return db.NewFromConn(conn)
}

// Unavailable returns a Postgres-dialect connection whose every statement
// fails, standing in for a backend outage. Expectations may be registered on
// the returned mock before use.
func Unavailable(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	conn, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open mocked postgres: %v", err)
	}
	return conn, mock
}
