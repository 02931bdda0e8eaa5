package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTimeframeDays(t *testing.T) {
	cases := map[Timeframe]int{
		"18":     18,
		" 18 ":   18,
		"12.9":   12,
		"7 days": 7,
		"-3":     -3,
		"":       0,
		"abc":    0,
		".5":     0,
	}
	for raw, want := range cases {
		if got := raw.Days(); got != want {
			t.Fatalf("Timeframe(%q).Days() = %d, want %d", raw, got, want)
		}
	}
}

func TestTimeframeJSON(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(`{"timeframe":"20","tickets":[]}`), &doc); err != nil {
		t.Fatalf("unmarshal string timeframe: %v", err)
	}
	if doc.Timeframe != "20" {
		t.Fatalf("unexpected timeframe %q", doc.Timeframe)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"timeframe":20`) {
		t.Fatalf("numeric timeframe should encode as number: %s", b)
	}

	if err := json.Unmarshal([]byte(`{"timeframe":18.5}`), &doc); err != nil {
		t.Fatalf("unmarshal number timeframe: %v", err)
	}
	if doc.Timeframe != "18.5" || doc.Timeframe.Days() != 18 {
		t.Fatalf("unexpected timeframe %q", doc.Timeframe)
	}

	b, _ = json.Marshal(Document{Timeframe: "soon"})
	if !strings.Contains(string(b), `"timeframe":"soon"`) {
		t.Fatalf("non numeric timeframe should encode as string: %s", b)
	}

	if err := json.Unmarshal([]byte(`{"timeframe":true}`), &doc); err == nil {
		t.Fatalf("expected error for boolean timeframe")
	}
}

func TestTicketValidation(t *testing.T) {
	v := NewValidator()

	ok := Ticket{Name: "login", BestCase: 1, WorstCase: 1}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("expected valid ticket, got %v", err)
	}

	bad := Ticket{Name: "", BestCase: 0, WorstCase: -1}
	msgs := FieldErrors(v.Struct(bad))
	want := []string{
		"name is required",
		"bestCase must be greater than 0",
		"worstCase must be greater than or equal to bestCase",
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %v", len(want), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Fatalf("message %d: got %q, want %q", i, msgs[i], want[i])
		}
	}
}

func TestDocumentValidationDives(t *testing.T) {
	v := NewValidator()
	doc := Document{Timeframe: "10", Tickets: []Ticket{
		{Name: "a", BestCase: 2, WorstCase: 3},
		{Name: "b", BestCase: 4, WorstCase: 3},
	}}
	msgs := FieldErrors(v.Struct(doc))
	if len(msgs) != 1 || msgs[0] != "tickets[1].worstCase must be greater than or equal to bestCase" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestDocumentTotalsAndClone(t *testing.T) {
	doc := Document{Timeframe: "18", Tickets: []Ticket{
		{ID: 1, Name: "a", BestCase: 2, WorstCase: 4},
		{ID: 2, Name: "b", BestCase: 5, WorstCase: 8},
	}}
	if doc.TotalBestCase() != 7 || doc.TotalWorstCase() != 12 {
		t.Fatalf("unexpected totals %d/%d", doc.TotalBestCase(), doc.TotalWorstCase())
	}
	c := doc.Clone()
	c.Tickets[0].Name = "changed"
	if doc.Tickets[0].Name != "a" {
		t.Fatalf("clone shares ticket storage")
	}

	var empty Document
	empty.Normalize()
	b, _ := json.Marshal(empty)
	if !strings.Contains(string(b), `"tickets":[]`) {
		t.Fatalf("normalized document should encode empty tickets: %s", b)
	}
}
