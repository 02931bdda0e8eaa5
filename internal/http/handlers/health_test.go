package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/timelinetracker/backend/internal/db"
	"github.com/timelinetracker/backend/internal/store"
)

func healthz(t *testing.T, backend store.Backend) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &Handler{Store: store.NewEstimates(backend, store.DefaultPrefix), Logger: zerolog.Nop()}

	r := gin.New()
	r.GET("/healthz", h.Healthz)

	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestHealthzMemory(t *testing.T) {
	if code := healthz(t, store.NewMemoryBackend()); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestHealthzIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pg, err := db.New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer pg.Close()

	if code := healthz(t, pg); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}
