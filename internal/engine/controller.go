package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"surveyflow/internal/model"
)

// DefaultFetchConcurrency bounds saved-answer fetches while loading
const DefaultFetchConcurrency = 8

// Config parameterizes one session. The same controller serves onboarding,
// profile and live surveys; only the ids and the persistence differ.
type Config struct {
	SurveyID    string
	UserID      string
	Persistence Persistence

	// FetchConcurrency limits in-flight saved-answer fetches during Load.
	// Zero means DefaultFetchConcurrency.
	FetchConcurrency int

	// Logger receives non-fatal failures. Nil means log.Default().
	Logger *log.Logger
}

// Edit is a partial update of the current answer. Exactly one field is set:
// Text replaces free text, OptionID selects (single) or toggles (multi).
type Edit struct {
	Text     *string
	OptionID string
}

// TextEdit is shorthand for an edit that replaces free text
func TextEdit(text string) Edit {
	return Edit{Text: &text}
}

// OptionEdit is shorthand for an edit that clicks an option
func OptionEdit(optionID string) Edit {
	return Edit{OptionID: optionID}
}

// Outcome describes the session after a forward transition
type Outcome struct {
	Progress model.Progress
	Status   model.SessionStatus
	Warning  *SaveError
}

// Controller drives one user through one survey: Loading, Active,
// Submitting, then Completed, or Failed if the load cannot finish.
// All methods are safe for concurrent use; while an Advance is in flight
// every other transition returns ErrBusy.
type Controller struct {
	cfg    Config
	logger *log.Logger

	mu         sync.Mutex
	status     model.SessionStatus
	questions  []model.Question
	store      *AnswerStore
	step       int
	busy       bool
	closed     bool
	epoch      uint64
	cancel     context.CancelFunc
	validation *ValidationError
	warnings   []*SaveError
	loadIssues []*SavedAnswerFetchError
	err        error
}

// New creates a controller in the Loading state. Call Load next.
func New(cfg Config) (*Controller, error) {
	if cfg.SurveyID == "" || cfg.UserID == "" {
		return nil, ErrMissingIdentity
	}
	if cfg.Persistence == nil {
		return nil, errors.New("persistence is required")
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = DefaultFetchConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		cfg:    cfg,
		logger: logger,
		status: model.SessionLoading,
	}, nil
}

// SurveyID returns the survey this session answers
func (c *Controller) SurveyID() string { return c.cfg.SurveyID }

// UserID returns the user answering
func (c *Controller) UserID() string { return c.cfg.UserID }

// Load fetches the catalog and every saved answer, then enters Active at
// the first step. A catalog failure moves the session to Failed; a failed
// or timed-out saved-answer fetch only seeds that question empty.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrSessionClosed
	}
	if c.status != model.SessionLoading || c.busy {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.busy = true
	epoch := c.epoch
	opCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	questions, saved, issues, err := c.fetchAll(opCtx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	c.cancel = nil
	if c.stale(epoch) {
		return ErrSessionClosed
	}
	if err != nil {
		c.status = model.SessionFailed
		c.err = err
		c.logger.Printf("[Engine] survey=%s user=%s load failed: %v", c.cfg.SurveyID, c.cfg.UserID, err)
		return err
	}

	store := NewAnswerStore(questions)
	for i, q := range questions {
		a := model.EmptyAnswer(q.ID)
		if saved[i] != nil {
			a = *saved[i]
		}
		if err := store.Seed(q.ID, a); err != nil {
			return fmt.Errorf("seed %s: %w", q.ID, err)
		}
	}
	for _, issue := range issues {
		c.logger.Printf("[Engine] survey=%s user=%s seeded empty: %v", c.cfg.SurveyID, c.cfg.UserID, issue)
	}

	c.questions = questions
	c.store = store
	c.loadIssues = issues
	c.step = 0
	c.status = model.SessionActive
	return nil
}

func (c *Controller) fetchAll(ctx context.Context) ([]model.Question, []*model.Answer, []*SavedAnswerFetchError, error) {
	p := c.cfg.Persistence

	raws, err := p.FetchCatalog(ctx, c.cfg.SurveyID)
	if err != nil {
		return nil, nil, nil, &CatalogError{SurveyID: c.cfg.SurveyID, Err: err}
	}
	questions, err := NormalizeCatalog(raws)
	if err != nil {
		return nil, nil, nil, &CatalogError{SurveyID: c.cfg.SurveyID, Err: err}
	}

	// Each goroutine writes only its own slot.
	saved := make([]*model.Answer, len(questions))
	fetchErrs := make([]error, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.FetchConcurrency)
	for i, q := range questions {
		g.Go(func() error {
			a, err := p.FetchSavedAnswer(gctx, c.cfg.UserID, q.ID)
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					return err
				}
				fetchErrs[i] = err
				return nil
			}
			if a != nil && a.QuestionID != "" && a.QuestionID != q.ID {
				fetchErrs[i] = fmt.Errorf("answer belongs to question %s", a.QuestionID)
				return nil
			}
			saved[i] = a
			return nil
		})
	}
	// A fetch cut short by ctx is one more per-question issue; only a
	// rejected credential fails the load. Abandon is caught by the epoch.
	if err := g.Wait(); err != nil {
		return nil, nil, nil, fmt.Errorf("load saved answers: %w", err)
	}

	var issues []*SavedAnswerFetchError
	for i, err := range fetchErrs {
		if err != nil {
			issues = append(issues, &SavedAnswerFetchError{QuestionID: questions[i].ID, Err: err})
		}
	}
	return questions, saved, issues, nil
}

// CurrentQuestion returns the question at the current step
func (c *Controller) CurrentQuestion() (model.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.questions) == 0 {
		return model.Question{}, false
	}
	return c.questions[c.step], true
}

// CurrentAnswer returns a copy of the answer at the current step
func (c *Controller) CurrentAnswer() (model.Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return model.Answer{}, false
	}
	return c.store.Get(c.questions[c.step].ID)
}

// Answers returns a copy of every answer keyed by question id
func (c *Controller) Answers() map[string]model.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]model.Answer, len(c.questions))
	if c.store == nil {
		return out
	}
	for _, q := range c.questions {
		if a, ok := c.store.Get(q.ID); ok {
			out[q.ID] = a
		}
	}
	return out
}

// SetAnswer applies a user edit to the current answer. It never persists
// and clears any pending validation error.
func (c *Controller) SetAnswer(edit Edit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInteractive(); err != nil {
		return err
	}

	q := c.questions[c.step]
	var err error
	switch {
	case edit.Text != nil && edit.OptionID != "":
		err = fmt.Errorf("%w: text and option in one edit", ErrInvalidEdit)
	case edit.Text != nil:
		err = c.store.SetText(q.ID, *edit.Text)
	case edit.OptionID != "":
		err = c.store.Select(q.ID, edit.OptionID)
	default:
		err = fmt.Errorf("%w: empty edit", ErrInvalidEdit)
	}
	if err != nil {
		return err
	}
	c.validation = nil
	return nil
}

// Advance validates the current answer, saves it, and moves to the next
// step. On the last step it submits the survey. A failed save is reported
// in Outcome.Warning and does not block the step unless the credential was
// rejected. A failed completion returns *CompletionError and leaves the
// session on the last step so Advance can be repeated.
func (c *Controller) Advance(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if err := c.checkInteractive(); err != nil {
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out, err
	}

	q := c.questions[c.step]
	answer, _ := c.store.Get(q.ID)
	if err := Validate(q, answer); err != nil {
		var verr *ValidationError
		errors.As(err, &verr)
		c.validation = verr
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out, err
	}

	c.validation = nil
	c.busy = true
	epoch := c.epoch
	opCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	last := c.step == len(c.questions)-1
	c.mu.Unlock()
	defer cancel()

	saveErr := c.cfg.Persistence.SaveAnswer(opCtx, answer)

	c.mu.Lock()
	if c.stale(epoch) {
		c.release()
		c.mu.Unlock()
		return Outcome{}, ErrSessionClosed
	}

	var warning *SaveError
	if saveErr != nil {
		warning = &SaveError{QuestionID: q.ID, Err: saveErr}
		if errors.Is(saveErr, ErrUnauthorized) {
			c.err = warning
			c.release()
			out := c.outcomeLocked()
			c.mu.Unlock()
			return out, warning
		}
		c.warnings = append(c.warnings, warning)
		c.logger.Printf("[Engine] survey=%s user=%s: %v", c.cfg.SurveyID, c.cfg.UserID, warning)
	}
	c.err = nil

	if !last {
		c.step++
		c.status = model.SessionActive
		c.release()
		out := c.outcomeLocked()
		out.Warning = warning
		c.mu.Unlock()
		return out, nil
	}

	c.status = model.SessionSubmitting
	c.mu.Unlock()

	completeErr := c.cfg.Persistence.CompleteSurvey(opCtx, c.cfg.SurveyID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.release()
	if c.stale(epoch) {
		return Outcome{}, ErrSessionClosed
	}
	if completeErr != nil {
		cerr := &CompletionError{SurveyID: c.cfg.SurveyID, Err: completeErr}
		c.err = cerr
		c.logger.Printf("[Engine] survey=%s user=%s: %v", c.cfg.SurveyID, c.cfg.UserID, cerr)
		out := c.outcomeLocked()
		out.Warning = warning
		return out, cerr
	}

	c.status = model.SessionCompleted
	out := c.outcomeLocked()
	out.Warning = warning
	return out, nil
}

// Retreat moves one step back without validating or saving. It is a no-op
// on the first step.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInteractive(); err != nil {
		return err
	}
	if c.step == 0 {
		return nil
	}
	c.step--
	c.status = model.SessionActive
	c.validation = nil
	c.err = nil
	return nil
}

// Progress returns the 1-based current step and the number of steps
func (c *Controller) Progress() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressLocked()
}

// Status returns the current session state
func (c *Controller) Status() model.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Busy reports whether a transition is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Err returns the last load, save-authorization or completion error
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ValidationError returns the pending validation failure of the current
// step, if any
func (c *Controller) ValidationError() *ValidationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validation
}

// Warnings returns every non-blocking save failure of the session
func (c *Controller) Warnings() []*SaveError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*SaveError, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// LoadIssues returns the saved-answer fetches that failed during Load
func (c *Controller) LoadIssues() []*SavedAnswerFetchError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*SavedAnswerFetchError, len(c.loadIssues))
	copy(out, c.loadIssues)
	return out
}

// View renders the session for the presentation layer
func (c *Controller) View() model.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := model.SessionView{
		SurveyID: c.cfg.SurveyID,
		UserID:   c.cfg.UserID,
		Status:   c.status,
		Progress: c.progressLocked(),
	}
	if c.store != nil && c.status != model.SessionCompleted {
		q := c.questions[c.step]
		a, _ := c.store.Get(q.ID)
		v.Question = &q
		v.Answer = &a
	}
	if c.validation != nil {
		v.ValidationError = c.validation.Reason
	}
	for _, w := range c.warnings {
		v.Warnings = append(v.Warnings, w.Error())
	}
	if c.err != nil {
		v.Error = c.err.Error()
	}
	return v
}

// Abandon closes the session. An in-flight call is cancelled and its
// result is discarded; every later call returns ErrSessionClosed.
func (c *Controller) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.epoch++
	if c.cancel != nil {
		c.cancel()
	}
}

func (c *Controller) checkInteractive() error {
	if c.closed || c.status == model.SessionCompleted {
		return ErrSessionClosed
	}
	if c.busy {
		return ErrBusy
	}
	if c.status != model.SessionActive && c.status != model.SessionSubmitting {
		return ErrNotActive
	}
	return nil
}

func (c *Controller) stale(epoch uint64) bool {
	return c.closed || c.epoch != epoch
}

func (c *Controller) release() {
	c.busy = false
	c.cancel = nil
}

func (c *Controller) progressLocked() model.Progress {
	if len(c.questions) == 0 {
		return model.Progress{}
	}
	return model.Progress{Current: c.step + 1, Total: len(c.questions)}
}

func (c *Controller) outcomeLocked() Outcome {
	return Outcome{Progress: c.progressLocked(), Status: c.status}
}
