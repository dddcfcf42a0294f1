// Package session records guided intake conversations and persists them.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/extract"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/transcript"
)

// Recorder owns one conversation session from OPEN to CLOSED.
// It is safe for concurrent use; mutations are serialized.
type Recorder struct {
	mu        sync.Mutex
	session   model.Session
	extractor *extract.FactExtractor
	echo      *transcript.LegacyEcho
	now       func() time.Time
}

// Option configures a Recorder
type Option func(*Recorder)

// WithClock sets the clock used for timestamps and arrest-year bounds
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
		r.extractor = extract.NewFactExtractorAt(now)
	}
}

// WithLegacyEcho enables or disables the positional q1..qN echo
func WithLegacyEcho(enabled bool) Option {
	return func(r *Recorder) {
		if enabled {
			r.echo = transcript.NewLegacyEcho(len(model.IntakeSchema))
		} else {
			r.echo = nil
		}
	}
}

// NewRecorder opens a new session
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		extractor: extract.NewFactExtractor(),
		echo:      transcript.NewLegacyEcho(len(model.IntakeSchema)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.session = model.Session{
		ID:        uuid.NewString(),
		StartedAt: r.now().UTC(),
		State:     model.SessionOpen,
		Turns:     []model.Turn{},
		Questions: model.Answers{},
		Facts:     model.NewFactSet(),
	}
	return r
}

// ID returns the session id
func (r *Recorder) ID() string {
	return r.session.ID
}

// Append adds a turn to the open session. Blank text is ignored. User turns
// are mined for facts as they arrive.
func (r *Recorder) Append(role model.Role, text string) error {
	if !role.Valid() {
		return derrors.Input(derrors.CodeInvalidRole, "invalid turn role %q", role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.State == model.SessionClosed {
		return derrors.SessionState(r.session.ID, "append")
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	r.session.Turns = append(r.session.Turns, model.Turn{
		Role:    role,
		Text:    text,
		Ordinal: len(r.session.Turns),
	})

	if role == model.RoleUser {
		r.extractor.Observe(r.session.Facts, text)
	}
	if r.echo != nil {
		r.echo.Observe(role, text)
	}
	return nil
}

// Close ends the session, stamps ended_at and derives the typed answers from
// the full turn log. A session can be closed once.
func (r *Recorder) Close() (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session.State == model.SessionClosed {
		return nil, derrors.SessionState(r.session.ID, "close")
	}

	ended := r.now().UTC()
	r.session.EndedAt = &ended
	r.session.State = model.SessionClosed
	r.session.Questions = transcript.Analyze(r.session.Turns)
	if r.echo != nil {
		r.session.LegacyQuestions = r.echo.Entries()
	}

	return r.snapshot(), nil
}

// Snapshot returns a copy of the session as it stands
func (r *Recorder) Snapshot() *model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Recorder) snapshot() *model.Session {
	s := cloneSession(&r.session)
	if r.session.State == model.SessionOpen && r.echo != nil {
		s.LegacyQuestions = r.echo.Entries()
	}
	return s
}

// cloneSession deep-copies sess so the copy shares no slices, maps or
// pointers with it
func cloneSession(sess *model.Session) *model.Session {
	s := *sess
	s.Turns = append([]model.Turn(nil), sess.Turns...)
	s.Questions = append(model.Answers(nil), sess.Questions...)
	if sess.EndedAt != nil {
		ended := *sess.EndedAt
		s.EndedAt = &ended
	}
	if sess.LegacyQuestions != nil {
		s.LegacyQuestions = make(map[string]string, len(sess.LegacyQuestions))
		for k, v := range sess.LegacyQuestions {
			s.LegacyQuestions[k] = v
		}
	}
	s.Facts = copyFacts(sess.Facts)
	return &s
}

func copyFacts(f *model.FactSet) *model.FactSet {
	out := model.NewFactSet()
	if f == nil {
		return out
	}
	out.FullName = copyString(f.FullName)
	out.Jurisdiction = copyString(f.Jurisdiction)
	out.DateOfBirth = copyString(f.DateOfBirth)
	out.CaseNumbers = append(out.CaseNumbers, f.CaseNumbers...)
	out.Charges = append(out.Charges, f.Charges...)
	out.DispositionDates = append(out.DispositionDates, f.DispositionDates...)
	out.ArrestYears = append(out.ArrestYears, f.ArrestYears...)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
