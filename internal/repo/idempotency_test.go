package repo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guaianases/go-recruiting-backend/internal/domain"
)

func newIdemDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("idem_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := db.AutoMigrate(&domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestGetIdempotency_EmptyKeyIsNotFound(t *testing.T) {
	db := newIdemDB(t)
	_, err := GetIdempotency(context.Background(), db, "u1", "   ", time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestCreateAndGetIdempotency_RoundTrip(t *testing.T) {
	db := newIdemDB(t)
	now := time.Now().UTC()

	rec, err := CreateIdempotency(context.Background(), db, "u1", "k1", "app-1", 201, time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" || rec.ApplicationID != "app-1" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.After(now) {
		t.Fatalf("ExpiresAt not in the future: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(context.Background(), db, "u1", "k1", now)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ApplicationID != "app-1" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	// Other user, same key: no hit.
	if _, err := GetIdempotency(context.Background(), db, "u2", "k1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-user lookup: got %v, want ErrNotFound", err)
	}
}

func TestGetIdempotency_ExpiredIsNotFound(t *testing.T) {
	db := newIdemDB(t)

	if _, err := CreateIdempotency(context.Background(), db, "u1", "k1", "app-1", 201, time.Millisecond); err != nil {
		t.Fatalf("create: %v", err)
	}
	later := time.Now().UTC().Add(time.Minute)
	if _, err := GetIdempotency(context.Background(), db, "u1", "k1", later); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired lookup: got %v, want ErrNotFound", err)
	}
}

func TestCreateIdempotency_DuplicateKey(t *testing.T) {
	db := newIdemDB(t)

	if _, err := CreateIdempotency(context.Background(), db, "u1", "k1", "app-1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(context.Background(), db, "u1", "k1", "app-2", 201, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}

	// Same key under a different user is a fresh tuple.
	if _, err := CreateIdempotency(context.Background(), db, "u2", "k1", "app-3", 201, time.Hour); err != nil {
		t.Fatalf("cross-user create: %v", err)
	}
}
