package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperjump/kotoba/internal/models"
)

func TestSQLiteStorage_InsertAndList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terms.db")
	store, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	terms := []models.Term{
		{Word: "machine learning", Definition: "learning from data"},
		{Word: "deep learning", Definition: "many-layer networks"},
		{Word: "cloud computing", Definition: "on-demand resources"},
	}
	n, err := store.InsertTerms(ctx, terms)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("inserted %d, want 3", n)
	}

	got, err := store.ListTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(terms, got); diff != "" {
		t.Errorf("ListTerms mismatch (-want +got):\n%s", diff)
	}

	again, err := store.ListTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("ListTerms order not stable (-first +second):\n%s", diff)
	}
}

func TestSQLiteStorage_DuplicatesIgnored(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "dup.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.InsertTerms(ctx, []models.Term{{Word: "algorithm", Definition: "first"}}); err != nil {
		t.Fatal(err)
	}
	n, err := store.InsertTerms(ctx, []models.Term{
		{Word: "algorithm", Definition: "second"},
		{Word: "model", Definition: "learned parameters"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("inserted %d, want 1 (duplicate skipped)", n)
	}
	term, err := store.GetTerm(ctx, "algorithm")
	if err != nil {
		t.Fatal(err)
	}
	if term.Definition != "first" {
		t.Errorf("duplicate overwrote definition: got %q", term.Definition)
	}
	count, err := store.CountTerms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestSQLiteStorage_GetTermNotFound(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	_, err = store.GetTerm(context.Background(), "missing")
	if !errors.Is(err, ErrTermNotFound) {
		t.Errorf("GetTerm error = %v, want ErrTermNotFound", err)
	}
}

func TestSQLiteStorage_InsertEmpty(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	n, err := store.InsertTerms(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("InsertTerms(nil) = %d, %v; want 0, nil", n, err)
	}
	terms, err := store.ListTerms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(terms) != 0 {
		t.Errorf("expected empty store, got %d terms", len(terms))
	}
}
