package company

import (
	"context"
	"errors"
	"testing"

	"github.com/niftydata/fundamentals-api/internal/apperror"
	"github.com/niftydata/fundamentals-api/internal/platform/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetOrCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	c, err := repo.GetOrCreate(ctx, "RELIANCE")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	// Second call must return the same row, not a duplicate.
	again, err := repo.GetOrCreate(ctx, "RELIANCE")
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if again.ID != c.ID {
		t.Errorf("expected ID %d, got %d", c.ID, again.ID)
	}
}

func TestGetByTicker_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)

	_, err := repo.GetByTicker(context.Background(), "NOSUCH")
	var ae *apperror.AppError
	if !errors.As(err, &ae) || ae.Code() != apperror.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGetByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	var ids []int64
	for _, ticker := range []string{"RELIANCE", "TCS", "INFY"} {
		c, err := repo.GetOrCreate(ctx, ticker)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, c.ID)
	}

	got, err := repo.GetByIDs(ctx, ids[:2])
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(got))
	}
	if got[0].Ticker != "RELIANCE" || got[1].Ticker != "TCS" {
		t.Errorf("unexpected tickers: %+v", got)
	}

	got, err = repo.GetByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("get by empty ids: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for empty input, got %+v", got)
	}
}

func TestList_OrderedByTicker(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	for _, ticker := range []string{"TCS", "HDFCBANK", "RELIANCE"} {
		if _, err := repo.GetOrCreate(ctx, ticker); err != nil {
			t.Fatal(err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 companies, got %d", len(got))
	}
	if got[0].Ticker != "HDFCBANK" || got[2].Ticker != "TCS" {
		t.Errorf("expected ticker order, got %+v", got)
	}
}
