package pager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User-facing messages. Kept generic on purpose; diagnostic detail goes to
// the report channel only.
const (
	NotForYouMessage               = "This menu is not for you."
	MissingEmbedPermissionsMessage = "Missing embed permissions."
	GenericErrorMessage            = "An unknown error occurred, sorry"
)

// DefaultTimeout is the idle window after which a session's controls are
// disabled when no timeout is configured.
const DefaultTimeout = 3 * time.Minute

var (
	// ErrAlreadyStarted is returned when Start is called on a non-idle view.
	ErrAlreadyStarted = errors.New("view already started")
	// ErrMissingEmbedPermission is returned when the invoking channel cannot
	// render embeds; the invoker has already received the ephemeral fallback.
	ErrMissingEmbedPermission = errors.New("missing embed permissions in channel")
)

// State tracks a view through its lifecycle. Stopped and TimedOut are
// terminal; no transition leaves them.
type State int

const (
	StateIdle State = iota
	StateActive
	StateStopped
	StateTimedOut
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	case StateTimedOut:
		return "timedOut"
	default:
		return "unknown"
	}
}

// Starter is the adapter for the invocation that opens a session. It knows
// how to create the initial message and how to refuse politely.
type Starter interface {
	// CanEmbed reports whether the invoking context may render structured content.
	CanEmbed() bool
	// CreateMessage posts the first page with its controls and returns a
	// handle to the resulting live message.
	CreateMessage(ctx context.Context, page *RenderedPage, controls []Control, ephemeral bool) (Handle, error)
	// SendEphemeral sends a message visible only to the invoker.
	SendEphemeral(ctx context.Context, content string) error
}

// Editor is the adapter for a single button press. EditMessage commits the
// new content and control states in one update so observers never see stale
// controls next to fresh content.
type Editor interface {
	// Ack acknowledges the interaction without changing the message.
	Ack(ctx context.Context) error
	// EditMessage commits a combined content-plus-controls update.
	EditMessage(ctx context.Context, page *RenderedPage, controls []Control) error
	// SendEphemeral sends a message visible only to the pressing user.
	SendEphemeral(ctx context.Context, content string) error
}

// Handle is the long-lived reference to the session's live message, used by
// paths that run outside any interaction (timeout, stop cleanup).
type Handle interface {
	Edit(ctx context.Context, page *RenderedPage, controls []Control) error
	Delete(ctx context.Context) error
}

// Options configures a View beyond its source and owner.
type Options struct {
	// Compact drops the First/Last controls and evaluates Next/Previous
	// independently.
	Compact bool
	// CheckEmbeds gates Start on the invoking context being able to render
	// structured content.
	CheckEmbeds bool
	// Timeout is the idle window before controls are disabled. Zero means
	// DefaultTimeout.
	Timeout time.Duration
	// Reporter receives structured failure reports. Nil discards them.
	Reporter Reporter
	// Logger for session diagnostics. Nil means no-op.
	Logger *zap.Logger
	// OnEnd runs once when the session reaches a terminal state, with the
	// view's ID. Used by the component router to drop its registry entry.
	OnEnd func(viewID string)
}

// View is one navigation session: it owns the current page index, the
// control list, and the live message, and mediates every transition through
// bounds checking and the single-owner interaction gate.
type View struct {
	id               string
	source           PageSource
	authorizedUserID snowflake.ID
	compact          bool
	checkEmbeds      bool
	timeout          time.Duration
	reporter         Reporter
	logger           *zap.Logger
	onEnd            func(string)

	mu           sync.Mutex
	state        State
	currentPage  int
	handle       Handle
	lastPage     *RenderedPage
	lastControls []Control
	lastActivity time.Time
	timer        *time.Timer
}

// NewView creates a view over the given source, driven exclusively by the
// given user. The view starts Idle; nothing is rendered until Start.
func NewView(source PageSource, authorizedUserID snowflake.ID, opts Options) *View {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Reporter == nil {
		opts.Reporter = NopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &View{
		id:               uuid.NewString(),
		source:           source,
		authorizedUserID: authorizedUserID,
		compact:          opts.Compact,
		checkEmbeds:      opts.CheckEmbeds,
		timeout:          opts.Timeout,
		reporter:         opts.Reporter,
		logger:           opts.Logger,
		onEnd:            opts.OnEnd,
	}
}

// ID returns the session identifier embedded in control custom IDs.
func (v *View) ID() string {
	return v.id
}

// State returns the current lifecycle state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// CurrentPage returns the page index currently on display.
func (v *View) CurrentPage() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.currentPage
}

// Authorize reports whether the acting user may drive this session.
// It never mutates state.
func (v *View) Authorize(actorID snowflake.ID) bool {
	return actorID == v.authorizedUserID
}

// Start validates the invoking context, prepares the source, renders page 0
// and posts the initial message. On a permission failure the invoker gets the
// ephemeral fallback and no session is created. The content argument, when
// non-empty, becomes the message's text body unless the source already
// rendered one.
func (v *View) Start(ctx context.Context, starter Starter, content string, ephemeral bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateIdle {
		return ErrAlreadyStarted
	}

	if v.checkEmbeds && !starter.CanEmbed() {
		if err := starter.SendEphemeral(ctx, MissingEmbedPermissionsMessage); err != nil {
			v.logger.Debug("Failed to send embed permission fallback", zap.Error(err))
		}
		return ErrMissingEmbedPermission
	}

	if err := v.source.PrepareOnce(ctx); err != nil {
		return fmt.Errorf("prepare source: %w", err)
	}

	entries, err := v.source.GetPage(0)
	if err != nil {
		return fmt.Errorf("fetch first page: %w", err)
	}

	page, err := v.source.FormatPage(ctx, v.pageInfoLocked(), entries)
	if err != nil {
		return fmt.Errorf("format first page: %w", err)
	}
	page.SetDefaultContent(content)

	controls := v.controlsLocked()
	handle, err := starter.CreateMessage(ctx, page, controls, ephemeral)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}

	v.handle = handle
	v.lastPage = page
	v.lastControls = controls
	v.state = StateActive
	v.lastActivity = time.Now()
	v.timer = time.AfterFunc(v.timeout, func() {
		v.OnTimeout(context.Background())
	})

	v.logger.Debug("Pagination session started",
		zap.String("view_id", v.id),
		zap.Uint64("user_id", uint64(v.authorizedUserID)))
	return nil
}

// HandleButton processes one button press: gate check, bounds-checked
// transition, render and combined commit. Failures are captured here; the
// actor gets a generic ephemeral notice and the reporter gets the detail.
func (v *View) HandleButton(ctx context.Context, actorID snowflake.ID, action Action, ed Editor) {
	if !v.Authorize(actorID) {
		if err := ed.SendEphemeral(ctx, NotForYouMessage); err != nil {
			v.logger.Debug("Failed to send authorization denial", zap.Error(err))
		}
		return
	}

	v.mu.Lock()
	if v.state != StateActive {
		v.mu.Unlock()
		v.ackQuiet(ctx, ed)
		return
	}
	v.lastActivity = time.Now()

	var err error
	switch action {
	case ActionFirst:
		err = v.showPageLocked(ctx, ed, 0)
	case ActionPrevious:
		err = v.showCheckedPageLocked(ctx, ed, v.currentPage-1)
	case ActionNext:
		err = v.showCheckedPageLocked(ctx, ed, v.currentPage+1)
	case ActionLast:
		// A source that cannot report its length has no last page to jump
		// to; treat the press as a no-op rather than guessing.
		if count, known := v.source.PageCount(); known {
			err = v.showPageLocked(ctx, ed, count-1)
		} else {
			v.ackQuiet(ctx, ed)
		}
	case ActionStop:
		err = v.stopLocked(ctx, ed)
	default:
		v.ackQuiet(ctx, ed)
	}
	v.mu.Unlock()

	if err != nil {
		v.captureError(ctx, ed, actorID, action, err)
	}
}

// OnTimeout disables every control in place once the idle window elapses.
// The message itself is kept. A no-op when the session already ended or when
// activity arrived while the timer was firing.
func (v *View) OnTimeout(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != StateActive {
		return
	}

	// Activity may have landed between the timer firing and the lock being
	// acquired; push the deadline out instead of expiring.
	if remaining := v.timeout - time.Since(v.lastActivity); remaining > 0 {
		v.timer.Reset(remaining)
		return
	}

	v.endLocked(StateTimedOut)

	if v.handle == nil {
		return
	}
	if err := v.handle.Edit(ctx, v.lastPage, disableAll(v.lastControls)); err != nil {
		// The message may have been deleted out from under us.
		v.logger.Debug("Failed to disable controls on timeout", zap.Error(err))
	}

	v.logger.Debug("Pagination session timed out", zap.String("view_id", v.id))
}

// showPageLocked performs the unconditional jump shared by First/Last:
// fetch, format, recompute enablement and commit in one update. The page
// index is rolled back when any step fails so state never drifts from what
// the message shows.
func (v *View) showPageLocked(ctx context.Context, ed Editor, pageNumber int) error {
	entries, err := v.source.GetPage(pageNumber)
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", pageNumber, err)
	}

	previous := v.currentPage
	v.currentPage = pageNumber

	page, err := v.source.FormatPage(ctx, v.pageInfoLocked(), entries)
	if err != nil {
		v.currentPage = previous
		return fmt.Errorf("format page %d: %w", pageNumber, err)
	}

	controls := v.controlsLocked()
	if err := ed.EditMessage(ctx, page, controls); err != nil {
		v.currentPage = previous
		return fmt.Errorf("commit page %d: %w", pageNumber, err)
	}

	v.lastPage = page
	v.lastControls = controls
	return nil
}

// showCheckedPageLocked is the guarded jump used by Previous/Next. Out of
// bounds targets are silently absorbed, which tolerates double-clicks racing
// past a boundary.
func (v *View) showCheckedPageLocked(ctx context.Context, ed Editor, pageNumber int) error {
	count, known := v.source.PageCount()
	if known && (pageNumber < 0 || pageNumber >= count) {
		v.ackQuiet(ctx, ed)
		return nil
	}
	if !known && pageNumber < 0 {
		v.ackQuiet(ctx, ed)
		return nil
	}

	err := v.showPageLocked(ctx, ed, pageNumber)
	if errors.Is(err, ErrOutOfRange) {
		// Sources without a pre-computed length can still overrun.
		v.ackQuiet(ctx, ed)
		return nil
	}
	return err
}

// stopLocked deletes the live message and ends the session. The session is
// considered stopped even when the delete fails; the failure still surfaces
// through error capture.
func (v *View) stopLocked(ctx context.Context, ed Editor) error {
	v.endLocked(StateStopped)
	v.ackQuiet(ctx, ed)

	if v.handle == nil {
		return nil
	}
	if err := v.handle.Delete(ctx); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	v.logger.Debug("Pagination session stopped", zap.String("view_id", v.id))
	return nil
}

// endLocked moves to a terminal state, kills the idle timer and fires the
// OnEnd hook exactly once.
func (v *View) endLocked(state State) {
	v.state = state
	if v.timer != nil {
		v.timer.Stop()
	}
	if v.onEnd != nil {
		v.onEnd(v.id)
		v.onEnd = nil
	}
}

// ackQuiet acknowledges an interaction without surfacing ack failures;
// a failed ack only means Discord shows a harmless "interaction failed".
func (v *View) ackQuiet(ctx context.Context, ed Editor) {
	if err := ed.Ack(ctx); err != nil {
		v.logger.Debug("Failed to acknowledge interaction", zap.Error(err))
	}
}

// pageInfoLocked snapshots the read-only state handed to FormatPage.
func (v *View) pageInfoLocked() PageInfo {
	count, known := v.source.PageCount()
	return PageInfo{
		CurrentPage: v.currentPage,
		PageCount:   count,
		CountKnown:  known,
		Compact:     v.compact,
	}
}

// captureError is the boundary for transition failures: generic ephemeral
// notice to the actor, detailed structured report to the owner channel, and
// the session stays alive.
func (v *View) captureError(ctx context.Context, ed Editor, actorID snowflake.ID, action Action, err error) {
	v.logger.Error("Pagination transition failed",
		zap.String("view_id", v.id),
		zap.String("action", string(action)),
		zap.Error(err))

	if sendErr := ed.SendEphemeral(ctx, GenericErrorMessage); sendErr != nil {
		v.logger.Debug("Failed to send generic error notice", zap.Error(sendErr))
	}

	v.reporter.Report(ctx, &ErrorReport{
		Title:     fmt.Sprintf("%T Error", v.source),
		Message:   err.Error(),
		Action:    action,
		UserID:    actorID,
		Timestamp: time.Now(),
	})
}
