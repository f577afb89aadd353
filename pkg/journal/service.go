// Package journal is the query engine over journal entries: owner-scoped
// reads and writes, tag reconciliation, search with paging, the public feed
// and range export.
package journal

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/export"
)

var (
	// ErrUnauthorized is returned when no user is signed in.
	ErrUnauthorized = errors.New("no current user")
	// ErrInvalidEntry wraps field validation failures.
	ErrInvalidEntry = errors.New("invalid entry")
)

// Identity reports the user on whose behalf the engine acts.
type Identity interface {
	UserID() (uuid.UUID, bool)
}

// Service runs journal operations for the current identity.
type Service struct {
	db       *sql.DB
	identity Identity
	renderer export.Renderer
	now      func() time.Time
	loc      *time.Location
	validate *validator.Validate
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the document renderer used by Export.
func WithRenderer(r export.Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides which calendar day is "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func New(db *sql.DB, identity Identity, opts ...Option) *Service {
	s := &Service{
		db:       db,
		identity: identity,
		renderer: export.NewPDFRenderer(),
		now:      time.Now,
		loc:      time.Local,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) callerID() (uuid.UUID, error) {
	if s.identity == nil {
		return uuid.Nil, ErrUnauthorized
	}
	id, ok := s.identity.UserID()
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// Today is the current calendar date in the service's location.
func (s *Service) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *Service) today() string {
	return s.Today().Format(DateLayout)
}
