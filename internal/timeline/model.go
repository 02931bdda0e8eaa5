package timeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/timelinetracker/backend/internal/models"
	"github.com/timelinetracker/backend/internal/store"
)

// DefaultTimeframe is used for identifiers with nothing stored yet.
const DefaultTimeframe = "18"

// Palette is cycled through as tickets are created.
var Palette = []string{
	"bg-blue-500", "bg-green-500", "bg-yellow-500", "bg-red-500",
	"bg-purple-500", "bg-pink-500", "bg-indigo-500", "bg-teal-500",
}

var (
	ErrInvalidTicket  = errors.New("invalid ticket")
	ErrTicketNotFound = errors.New("ticket not found")
)

// ValidationError lists why a ticket was rejected. It matches
// ErrInvalidTicket with errors.Is.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid ticket: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidTicket
}

// TicketInput carries the user editable fields of a ticket.
type TicketInput struct {
	Name      string
	BestCase  int
	WorstCase int
	Link      string
}

// Store is the persistence contract the model saves through.
type Store interface {
	Load(ctx context.Context, userID string) (models.Document, error)
	Save(ctx context.Context, userID string, doc models.Document) (string, error)
	Delete(ctx context.Context, userID string) error
}

type Options struct {
	Logger zerolog.Logger
	// SaveTimeout bounds each background save. Defaults to 15s.
	SaveTimeout time.Duration
	// OnSaveError is called from the saver goroutine when a save fails.
	OnSaveError func(error)
	// DefaultTimeframe seeds new documents. Defaults to DefaultTimeframe.
	DefaultTimeframe string
	// Now is the clock used for ticket ids.
	Now func() time.Time
}

// Model is the working set of one user session. Every successful mutation
// schedules a save of the whole document; failures are logged and never
// roll back the in-memory state.
type Model struct {
	mu       sync.Mutex
	userID   string
	doc      models.Document
	created  int
	lastID   int64
	defaultT models.Timeframe

	now      func() time.Time
	validate *validator.Validate
	store    Store
	saver    *saver
}

// New builds a model around doc. A nil store keeps the model in memory
// only.
func New(userID string, doc models.Document, st Store, opts Options) *Model {
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = 15 * time.Second
	}
	if opts.DefaultTimeframe == "" {
		opts.DefaultTimeframe = DefaultTimeframe
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	doc = doc.Clone()
	m := &Model{
		userID:   userID,
		doc:      doc,
		created:  len(doc.Tickets),
		defaultT: models.Timeframe(opts.DefaultTimeframe),
		now:      opts.Now,
		validate: models.NewValidator(),
		store:    st,
	}
	for _, t := range doc.Tickets {
		if t.ID > m.lastID {
			m.lastID = t.ID
		}
	}
	if st != nil {
		m.saver = newSaver(st, userID, opts.SaveTimeout, opts.Logger, opts.OnSaveError)
	}
	return m
}

// Open loads the document stored for userID. Nothing stored yet is not an
// error: the model starts from the default document.
func Open(ctx context.Context, st Store, userID string, opts Options) (*Model, error) {
	doc, err := st.Load(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("open timeline: %w", err)
		}
		def := opts.DefaultTimeframe
		if def == "" {
			def = DefaultTimeframe
		}
		doc = models.Document{Timeframe: models.Timeframe(def), Tickets: []models.Ticket{}}
	}
	return New(userID, doc, st, opts), nil
}

func (m *Model) UserID() string {
	return m.userID
}

func (m *Model) check(t models.Ticket) error {
	if err := m.validate.Struct(t); err != nil {
		return &ValidationError{Fields: models.FieldErrors(err)}
	}
	return nil
}

func (m *Model) nextID() int64 {
	id := m.now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return id
}

// AddTicket appends a ticket with a fresh id and the next palette color.
func (m *Model) AddTicket(in TicketInput) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := models.Ticket{Name: in.Name, BestCase: in.BestCase, WorstCase: in.WorstCase, Link: in.Link}
	if err := m.check(t); err != nil {
		return models.Ticket{}, err
	}
	t.ID = m.nextID()
	t.Color = Palette[m.created%len(Palette)]
	m.created++
	m.doc.Tickets = append(m.doc.Tickets, t)
	m.persistLocked()
	return t, nil
}

// EditTicket replaces the editable fields of ticket id, keeping its id,
// color and position.
func (m *Model) EditTicket(id int64, in TicketInput) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return models.Ticket{}, ErrTicketNotFound
	}
	t := m.doc.Tickets[idx]
	t.Name, t.BestCase, t.WorstCase, t.Link = in.Name, in.BestCase, in.WorstCase, in.Link
	if err := m.check(t); err != nil {
		return models.Ticket{}, err
	}
	m.doc.Tickets[idx] = t
	m.persistLocked()
	return t, nil
}

// DeleteTicket removes ticket id and reports whether it existed.
func (m *Model) DeleteTicket(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return false
	}
	m.doc.Tickets = append(m.doc.Tickets[:idx:idx], m.doc.Tickets[idx+1:]...)
	m.persistLocked()
	return true
}

// SetTimeframe stores the value as entered; it is coerced when computing.
func (m *Model) SetTimeframe(raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.Timeframe = models.Timeframe(raw)
	m.persistLocked()
}

func (m *Model) Ticket(id int64) (models.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexLocked(id)
	if idx < 0 {
		return models.Ticket{}, false
	}
	return m.doc.Tickets[idx], true
}

func (m *Model) Tickets() []models.Ticket {
	return m.Document().Tickets
}

func (m *Model) Timeframe() models.Timeframe {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Timeframe
}

// Document returns a copy of the current state.
func (m *Model) Document() models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := m.doc.Clone()
	doc.Normalize()
	return doc
}

func (m *Model) Remaining() Remaining {
	return RemainingFor(m.Document())
}

func (m *Model) ChartSegments() []Segment {
	return SegmentsFor(m.Document())
}

// Reset deletes the stored document and starts over from the default one.
func (m *Model) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store != nil {
		m.saver.discard()
		if err := m.saver.flush(ctx); err != nil {
			return err
		}
		if err := m.store.Delete(ctx, m.userID); err != nil {
			return fmt.Errorf("reset timeline: %w", err)
		}
	}
	m.doc = models.Document{Timeframe: m.defaultT, Tickets: []models.Ticket{}}
	m.created = 0
	return nil
}

// Flush waits until every mutation so far has been written.
func (m *Model) Flush(ctx context.Context) error {
	if m.saver == nil {
		return nil
	}
	return m.saver.flush(ctx)
}

// Close writes any pending change and stops the background saver.
func (m *Model) Close() {
	if m.saver != nil {
		m.saver.close()
	}
}

func (m *Model) indexLocked(id int64) int {
	for i, t := range m.doc.Tickets {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persistLocked hands a snapshot to the saver while m.mu is held, so saves
// are scheduled in mutation order.
func (m *Model) persistLocked() {
	if m.saver == nil {
		return
	}
	doc := m.doc.Clone()
	doc.Normalize()
	m.saver.schedule(doc)
}
