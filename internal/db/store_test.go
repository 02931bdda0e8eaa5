package db

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/store"
)

func TestStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pg, err := New(ctx, url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	est := store.NewEstimates(pg, "test-")
	doc := models.Document{Timeframe: "18", Tickets: []models.Ticket{
		{ID: 1, Name: "a", BestCase: 2, WorstCase: 4, Color: "bg-blue-500"},
	}}
	if _, err := est.Save(ctx, "integration", doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := est.Load(ctx, "integration")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if err := est.Delete(ctx, "integration"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := est.Load(ctx, "integration"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
