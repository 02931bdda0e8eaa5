package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/timelinetracker/backend/internal/models"
)

// ErrNotFound is returned when nothing is stored for a user identifier.
var ErrNotFound = errors.New("timeline not found")

// DefaultPrefix is prepended to every object key.
const DefaultPrefix = "timelinetracker-"

// Backend stores opaque objects by key. Save replaces the whole object and
// reports where it was written. Delete of a missing key is not an error.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Estimates keeps one timeline document per user identifier on top of a
// Backend.
type Estimates struct {
	backend Backend
	prefix  string
}

func NewEstimates(backend Backend, prefix string) *Estimates {
	return &Estimates{backend: backend, prefix: prefix}
}

// Key returns the object key used for userID.
func (e *Estimates) Key(userID string) string {
	return e.prefix + url.PathEscape(userID) + ".json"
}

func (e *Estimates) Load(ctx context.Context, userID string) (models.Document, error) {
	data, err := e.backend.Load(ctx, e.Key(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Document{}, ErrNotFound
		}
		return models.Document{}, fmt.Errorf("load timeline: %w", err)
	}
	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.Document{}, fmt.Errorf("decode timeline: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (e *Estimates) Save(ctx context.Context, userID string, doc models.Document) (string, error) {
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode timeline: %w", err)
	}
	location, err := e.backend.Save(ctx, e.Key(userID), data)
	if err != nil {
		return "", fmt.Errorf("save timeline: %w", err)
	}
	return location, nil
}

func (e *Estimates) Delete(ctx context.Context, userID string) error {
	if err := e.backend.Delete(ctx, e.Key(userID)); err != nil {
		return fmt.Errorf("delete timeline: %w", err)
	}
	return nil
}

// Ping checks the backend when it supports health checks.
func (e *Estimates) Ping(ctx context.Context) error {
	if p, ok := e.backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
