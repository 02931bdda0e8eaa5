package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/timelinetracker/backend/internal/config"
	httpapi "github.com/timelinetracker/backend/internal/http"
	"github.com/timelinetracker/backend/internal/store"
	"github.com/timelinetracker/backend/internal/timeline"
)

type harness struct {
	t   *testing.T
	env map[string]string
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{CORSAllowed: "*", RequestTimeout: 5 * time.Second, MaxBodyKB: 64}
	srv := httptest.NewServer(httpapi.Router(cfg, store.NewEstimates(store.NewMemoryBackend(), store.DefaultPrefix), zerolog.Nop()))
	t.Cleanup(srv.Close)
	return &harness{
		t:   t,
		env: map[string]string{"TIMELINE_API_URL": srv.URL + "/api/timeline"},
		dir: t.TempDir(),
	}
}

func (h *harness) run(args ...string) (string, string, int) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--id-file", filepath.Join(h.dir, "user-id")}, args...)
	code := run(context.Background(), &stdout, &stderr, full, h.env)
	return stdout.String(), stderr.String(), code
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, errOut, code := h.run(args...)
	if code != 0 {
		h.t.Fatalf("planner %v exited %d: %s", args, code, errOut)
	}
	return out
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "added" {
		t.Fatalf("unexpected add output %q", out)
	}
	return fields[1]
}

func TestPlannerWorkflow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("show")
	if !strings.Contains(out, "Timeframe: 18 days") || !strings.Contains(out, "No tickets yet.") {
		t.Fatalf("unexpected initial show:\n%s", out)
	}

	first := addedID(t, h.mustRun("add", "-n", "api", "-b", "2", "-w", "4"))
	h.mustRun("add", "--name", "ui", "--best", "5", "--worst", "8", "--link", "https://example.com/ui")

	out = h.mustRun("show")
	if !strings.Contains(out, "Remaining: 11 days best case, 6 days worst case") {
		t.Fatalf("unexpected remaining:\n%s", out)
	}
	if !strings.Contains(out, "https://example.com/ui") || !strings.Contains(out, "█") {
		t.Fatalf("expected link and chart in output:\n%s", out)
	}

	h.mustRun("edit", first, "--worst", "10")
	out = h.mustRun("show")
	if !strings.Contains(out, "Remaining: 11 days best case, 0 days worst case") {
		t.Fatalf("edit should keep unset fields:\n%s", out)
	}

	h.mustRun("timeframe", "15")
	out = h.mustRun("show")
	if !strings.Contains(out, "Worst case runs 3 days over the timeframe.") {
		t.Fatalf("expected over-budget note:\n%s", out)
	}

	out = h.mustRun("export", "-o", "-")
	if !strings.HasPrefix(out, "Name,Best Case,Worst Case,Link\n") || !strings.Contains(out, "api,2 days,10 days,") {
		t.Fatalf("unexpected export:\n%s", out)
	}

	h.mustRun("rm", first)
	if _, _, code := h.run("rm", first); code == 0 {
		t.Fatalf("removing a missing ticket should fail")
	}

	h.mustRun("reset")
	out = h.mustRun("show")
	if !strings.Contains(out, "Timeframe: "+timeline.DefaultTimeframe+" days") || !strings.Contains(out, "No tickets yet.") {
		t.Fatalf("unexpected show after reset:\n%s", out)
	}
}

func TestPlannerRejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, errOut, code := h.run("add", "-n", "x", "-b", "5", "-w", "2")
	if code == 0 || !strings.Contains(errOut, "worstCase must be greater than or equal to bestCase") {
		t.Fatalf("expected validation failure, got %d %q", code, errOut)
	}

	if _, errOut, code = h.run("edit", "abc"); code == 0 || !strings.Contains(errOut, "invalid ticket id") {
		t.Fatalf("expected invalid id error, got %d %q", code, errOut)
	}

	if _, errOut, code = h.run("frobnicate"); code == 0 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("expected unknown command error, got %d %q", code, errOut)
	}

	if _, errOut, code = h.run("export", "-f", "pdf"); code == 0 || !strings.Contains(errOut, "unsupported export format") {
		t.Fatalf("expected format error, got %d %q", code, errOut)
	}
}

func TestPlannerReportsUnreachableAPI(t *testing.T) {
	h := newHarness(t)
	h.env["TIMELINE_API_URL"] = "http://127.0.0.1:1/api/timeline"

	if _, errOut, code := h.run("show"); code == 0 || !strings.Contains(errOut, "open timeline") {
		t.Fatalf("expected open failure, got %d %q", code, errOut)
	}
}

func TestPlannerHelp(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun()
	for _, name := range commandOrder {
		if !strings.Contains(out, "  "+name) {
			t.Fatalf("usage misses %s:\n%s", name, out)
		}
	}

	out = h.mustRun("add", "--help")
	if !strings.Contains(out, "--worst") {
		t.Fatalf("add help misses flags:\n%s", out)
	}
}

func TestBar(t *testing.T) {
	got := bar(0.25, timeline.Segment{Solid: 0.25, Light: 0.25})
	want := "|" + strings.Repeat(" ", 10) + strings.Repeat("█", 10) + strings.Repeat("░", 10) + strings.Repeat(" ", 10) + "|"
	if got != want {
		t.Fatalf("bar mismatch\n got %q\nwant %q", got, want)
	}
	if got := bar(0.9, timeline.Segment{Solid: 0.5}); strings.Count(got, "█") != 4 {
		t.Fatalf("bar should clip at the row end: %q", got)
	}
}
