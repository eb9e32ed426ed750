package listctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sloppy/scanreport-console/internal/metrics"
	"github.com/sloppy/scanreport-console/internal/rest"
)

// ErrStale is returned by Refresh when a newer refresh started while the
// response was in flight; the response is discarded.
var ErrStale = errors.New("refresh superseded by a newer request")

// Backend is the subset of the REST client the controller needs.
type Backend interface {
	Query(ctx context.Context, params rest.Params) (rest.Page, error)
	Get(ctx context.Context, id string) (rest.ScanReport, error)
	Update(ctx context.Context, report rest.ScanReport) error
	Delete(ctx context.Context, id string) error
}

// SessionHandler receives the session-expired signal. Implementations send
// the user back through authentication, typically by reloading the current
// location.
type SessionHandler interface {
	SessionExpired(ctx context.Context)
}

// SessionFunc adapts a function to SessionHandler.
type SessionFunc func(ctx context.Context)

func (f SessionFunc) SessionExpired(ctx context.Context) { f(ctx) }

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// DeleteResult says what Delete ended up doing.
type DeleteResult int

const (
	DeleteFailed DeleteResult = iota
	DeleteRemoved
	DeleteAlreadyGone
	DeleteCancelled
)

func (r DeleteResult) String() string {
	switch r {
	case DeleteRemoved:
		return "removed"
	case DeleteAlreadyGone:
		return "already_gone"
	case DeleteCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Options carries the controller's optional collaborators.
type Options struct {
	Session SessionHandler
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Controller runs refresh, update and delete against a shared State.
type Controller struct {
	backend Backend
	session SessionHandler
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu         sync.Mutex
	state      *State
	generation uint64
}

// New binds a controller to state. A nil state starts from NewState(0).
func New(backend Backend, state *State, opts Options) *Controller {
	if state == nil {
		state = NewState(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		backend: backend,
		session: opts.Session,
		logger:  logger,
		metrics: opts.Metrics,
		state:   state,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := *c.state
	out.Items = append([]rest.ScanReport(nil), c.state.Items...)
	return out
}

// Select marks item as the report shown in the detail panes.
func (c *Controller) Select(item rest.ScanReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Selected = &item
}

// Refresh reloads the list with the current search, pagination and sort.
//
// 404 empties the list, 401/403 raise the session-expired signal without
// touching the items, and anything else unexpected is logged and returned.
// Responses belonging to a superseded refresh are dropped with ErrStale.
func (c *Controller) Refresh(ctx context.Context) (rest.Outcome, error) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	params := c.state.Query.Params()
	c.mu.Unlock()

	page, err := c.backend.Query(ctx, params)
	outcome := page.Outcome
	if err != nil {
		outcome = rest.OutcomeOf(err)
	}

	if outcome == rest.OutcomeSessionExpired {
		c.metrics.ObserveRefresh(outcome.String())
		c.sessionExpired(ctx)
		return outcome, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.metrics.ObserveRefresh("stale")
		c.logger.Debug("discarding stale refresh", "generation", gen, "current", c.generation)
		return outcome, ErrStale
	}
	c.metrics.ObserveRefresh(outcome.String())

	switch outcome {
	case rest.OutcomeOK, rest.OutcomeEmpty:
		*c.state = ApplyPage(*c.state, page)
		return outcome, nil
	case rest.OutcomeNotFound:
		*c.state = ApplyNotFound(*c.state)
		return outcome, nil
	case rest.OutcomeRedirect:
		c.logger.Warn("scan report list redirected; leaving list unchanged")
		return outcome, nil
	default:
		c.logger.Error("refresh failed", "err", err)
		return outcome, err
	}
}

// Update loads the server copy of item, overlays the editable fields and
// saves it. With a search filter active the list is refreshed afterwards so
// it keeps matching the server-side filter.
func (c *Controller) Update(ctx context.Context, item rest.ScanReport) (rest.ScanReport, error) {
	current, err := c.backend.Get(ctx, item.ID)
	if err != nil {
		c.logger.Debug("update: fetch failed", "id", item.ID, "err", err)
		c.checkSession(ctx, err)
		return rest.ScanReport{}, fmt.Errorf("fetch scan report %s: %w", item.ID, err)
	}

	current.Label = item.Label
	current.Location = item.Location
	current.Properties = item.Properties

	if err := c.backend.Update(ctx, current); err != nil {
		c.logger.Error("update failed", "id", item.ID, "err", err)
		c.checkSession(ctx, err)
		return rest.ScanReport{}, fmt.Errorf("update scan report %s: %w", item.ID, err)
	}

	if c.searchActive() {
		if _, err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
			return current, err
		}
	}
	return current, nil
}

// DeletePrompt is the confirmation question for removing id.
func DeletePrompt(id string) string {
	return fmt.Sprintf("Are you sure you want to remove scan report %q?", id)
}

// Delete fetches item, asks confirm, deletes it and refreshes. A report the
// backend no longer knows about counts as already deleted: the list is
// refreshed and no delete is sent.
func (c *Controller) Delete(ctx context.Context, item rest.ScanReport, confirm Confirmer) (DeleteResult, error) {
	if _, err := c.backend.Get(ctx, item.ID); err != nil {
		if errors.Is(err, rest.ErrNotFound) {
			return DeleteAlreadyGone, c.refreshAfterChange(ctx)
		}
		c.checkSession(ctx, err)
		return DeleteFailed, fmt.Errorf("fetch scan report %s: %w", item.ID, err)
	}

	if confirm == nil || !confirm.Confirm(ctx, DeletePrompt(item.ID)) {
		return DeleteCancelled, nil
	}

	if err := c.backend.Delete(ctx, item.ID); err != nil {
		c.logger.Error("delete failed", "id", item.ID, "err", err)
		c.checkSession(ctx, err)
		return DeleteFailed, fmt.Errorf("delete scan report %s: %w", item.ID, err)
	}

	c.mu.Lock()
	if c.state.Selected != nil && c.state.Selected.ID == item.ID {
		c.state.Selected = nil
	}
	c.mu.Unlock()

	return DeleteRemoved, c.refreshAfterChange(ctx)
}

func (c *Controller) refreshAfterChange(ctx context.Context) error {
	_, err := c.Refresh(ctx)
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}

func (c *Controller) searchActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Query.SearchParam != ""
}

func (c *Controller) checkSession(ctx context.Context, err error) {
	if errors.Is(err, rest.ErrSessionExpired) {
		c.sessionExpired(ctx)
	}
}

func (c *Controller) sessionExpired(ctx context.Context) {
	c.logger.Info("backend session expired")
	if c.session != nil {
		c.session.SessionExpired(ctx)
	}
}
