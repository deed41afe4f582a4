package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"surveyflow/internal/engine"
	"surveyflow/internal/model"
)

// DefaultSessionIdleTTL is how long an untouched hosted session survives
const DefaultSessionIdleTTL = 30 * time.Minute

const sessionCallTimeout = 30 * time.Second

type sessionKey struct {
	userID   string
	surveyID string
}

type hostedSession struct {
	ctl      *engine.Controller
	lastSeen time.Time
}

// SessionService hosts one session controller per user and survey for
// clients that do not run the engine themselves
type SessionService struct {
	surveys     *SurveyService
	answers     *AnswerService
	completions *CompletionService
	broadcaster Broadcaster

	fetchConcurrency int
	idleTTL          time.Duration
	now              func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*hostedSession
}

// NewSessionService creates a new session service
func NewSessionService(surveys *SurveyService, answers *AnswerService, completions *CompletionService, fetchConcurrency int, idleTTL time.Duration) *SessionService {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	return &SessionService{
		surveys:          surveys,
		answers:          answers,
		completions:      completions,
		fetchConcurrency: fetchConcurrency,
		idleTTL:          idleTTL,
		now:              time.Now,
		sessions:         make(map[sessionKey]*hostedSession),
	}
}

// SetBroadcaster injects the WebSocket broadcaster
func (s *SessionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Start opens a fresh session, replacing any session the user already had
// for the survey, and loads it
func (s *SessionService) Start(ctx context.Context, userID, surveyID string) (model.SessionView, error) {
	ctl, err := engine.New(engine.Config{
		SurveyID:         surveyID,
		UserID:           userID,
		Persistence:      NewLocalPersistence(userID, s.surveys, s.answers, s.completions),
		FetchConcurrency: s.fetchConcurrency,
	})
	if err != nil {
		return model.SessionView{}, err
	}

	key := sessionKey{userID: userID, surveyID: surveyID}
	s.mu.Lock()
	if prev, ok := s.sessions[key]; ok {
		prev.ctl.Abandon()
	}
	s.sessions[key] = &hostedSession{ctl: ctl, lastSeen: s.now()}
	s.mu.Unlock()

	loadCtx, cancel := detached(ctx)
	defer cancel()
	if err := ctl.Load(loadCtx); err != nil {
		s.drop(key, ctl)
		return ctl.View(), err
	}

	view := ctl.View()
	broadcast(s.broadcaster, surveyID, EventSessionStarted, ProgressEvent{
		SurveyID: surveyID,
		UserID:   userID,
		Step:     view.Progress.Current,
		Total:    view.Progress.Total,
	})
	return view, nil
}

// View returns the current state of a session
func (s *SessionService) View(userID, surveyID string) (model.SessionView, error) {
	ctl, err := s.get(userID, surveyID)
	if err != nil {
		return model.SessionView{}, err
	}
	return ctl.View(), nil
}

// Edit applies a user edit to the current answer
func (s *SessionService) Edit(userID, surveyID string, req model.SessionEditRequest) (model.SessionView, error) {
	ctl, err := s.get(userID, surveyID)
	if err != nil {
		return model.SessionView{}, err
	}
	err = ctl.SetAnswer(engine.Edit{Text: req.Text, OptionID: req.OptionID})
	return ctl.View(), err
}

// Advance validates, saves and moves the session forward. A completed
// session is removed after its final view is taken.
func (s *SessionService) Advance(ctx context.Context, userID, surveyID string) (model.SessionView, error) {
	ctl, err := s.get(userID, surveyID)
	if err != nil {
		return model.SessionView{}, err
	}

	callCtx, cancel := detached(ctx)
	defer cancel()
	_, err = ctl.Advance(callCtx)

	view := ctl.View()
	if view.Status == model.SessionCompleted {
		s.drop(sessionKey{userID: userID, surveyID: surveyID}, ctl)
	}
	return view, err
}

// Retreat moves the session one step back
func (s *SessionService) Retreat(userID, surveyID string) (model.SessionView, error) {
	ctl, err := s.get(userID, surveyID)
	if err != nil {
		return model.SessionView{}, err
	}
	err = ctl.Retreat()
	return ctl.View(), err
}

// Abandon closes and forgets a session
func (s *SessionService) Abandon(userID, surveyID string) error {
	key := sessionKey{userID: userID, surveyID: surveyID}
	s.mu.Lock()
	hs, ok := s.sessions[key]
	delete(s.sessions, key)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	hs.ctl.Abandon()
	return nil
}

// Len returns the number of hosted sessions
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps idle sessions until ctx is done
func (s *SessionService) Run(ctx context.Context) {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweepIdle(); n > 0 {
				log.Printf("[SessionService] swept %d idle sessions", n)
			}
		}
	}
}

func (s *SessionService) sweepIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var idle []*engine.Controller
	for key, hs := range s.sessions {
		if hs.lastSeen.Before(cutoff) && !hs.ctl.Busy() {
			idle = append(idle, hs.ctl)
			delete(s.sessions, key)
		}
	}
	s.mu.Unlock()

	for _, ctl := range idle {
		ctl.Abandon()
	}
	return len(idle)
}

func (s *SessionService) get(userID, surveyID string) (*engine.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hs, ok := s.sessions[sessionKey{userID: userID, surveyID: surveyID}]
	if !ok {
		return nil, ErrSessionNotFound
	}
	hs.lastSeen = s.now()
	return hs.ctl, nil
}

// drop forgets key only if it still maps to ctl
func (s *SessionService) drop(key sessionKey, ctl *engine.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hs, ok := s.sessions[key]; ok && hs.ctl == ctl {
		delete(s.sessions, key)
	}
}

// detached keeps a session call running when the HTTP client goes away
// mid-request; Abandon still cancels it.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sessionCallTimeout)
}

// IsSessionConflict reports whether err means the session cannot take the
// action right now
func IsSessionConflict(err error) bool {
	return errors.Is(err, engine.ErrBusy) || errors.Is(err, engine.ErrSessionClosed) || errors.Is(err, engine.ErrNotActive)
}
