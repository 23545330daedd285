package pager_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
)

const (
	ownerID    = snowflake.ID(100)
	intruderID = snowflake.ID(200)
)

type commit struct {
	page     *pager.RenderedPage
	controls []pager.Control
}

type fakeHandle struct {
	edits     []commit
	deletes   int
	editErr   error
	deleteErr error
}

func (h *fakeHandle) Edit(_ context.Context, page *pager.RenderedPage, controls []pager.Control) error {
	if h.editErr != nil {
		return h.editErr
	}
	h.edits = append(h.edits, commit{page: page, controls: controls})
	return nil
}

func (h *fakeHandle) Delete(context.Context) error {
	if h.deleteErr != nil {
		return h.deleteErr
	}
	h.deletes++
	return nil
}

type fakeStarter struct {
	canEmbed      bool
	handle        *fakeHandle
	created       []commit
	createdHidden []bool
	ephemerals    []string
	createErr     error
}

func (s *fakeStarter) CanEmbed() bool {
	return s.canEmbed
}

func (s *fakeStarter) CreateMessage(_ context.Context, page *pager.RenderedPage, controls []pager.Control, ephemeral bool) (pager.Handle, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, commit{page: page, controls: controls})
	s.createdHidden = append(s.createdHidden, ephemeral)
	return s.handle, nil
}

func (s *fakeStarter) SendEphemeral(_ context.Context, content string) error {
	s.ephemerals = append(s.ephemerals, content)
	return nil
}

type fakeEditor struct {
	acks       int
	edits      []commit
	ephemerals []string
	editErr    error
}

func (e *fakeEditor) Ack(context.Context) error {
	e.acks++
	return nil
}

func (e *fakeEditor) EditMessage(_ context.Context, page *pager.RenderedPage, controls []pager.Control) error {
	if e.editErr != nil {
		return e.editErr
	}
	e.edits = append(e.edits, commit{page: page, controls: controls})
	return nil
}

func (e *fakeEditor) SendEphemeral(_ context.Context, content string) error {
	e.ephemerals = append(e.ephemerals, content)
	return nil
}

type fakeReporter struct {
	reports []*pager.ErrorReport
}

func (r *fakeReporter) Report(_ context.Context, report *pager.ErrorReport) {
	r.reports = append(r.reports, report)
}

// textSource renders each page as "page <n>/<count>" so tests can assert
// which page was committed.
type textSource struct {
	*pager.ListSource
	formatErr error
}

func newTextSource(t *testing.T, items, perPage int) *textSource {
	t.Helper()
	list, err := pager.NewListSource(makeEntries(items), perPage)
	require.NoError(t, err)
	return &textSource{ListSource: list}
}

func (s *textSource) FormatPage(_ context.Context, info pager.PageInfo, entries []any) (*pager.RenderedPage, error) {
	if s.formatErr != nil {
		return nil, s.formatErr
	}
	return pager.TextPage(fmt.Sprintf("page %d/%d (%d items)", info.CurrentPage+1, info.PageCount, len(entries))), nil
}

// endlessSource cannot pre-compute its length.
type endlessSource struct {
	*textSource
}

func (s *endlessSource) PageCount() (int, bool) { return 0, false }
func (s *endlessSource) IsPaginating() bool     { return true }

func startView(t *testing.T, source pager.PageSource, opts pager.Options) (*pager.View, *fakeStarter, *fakeHandle) {
	t.Helper()

	handle := &fakeHandle{}
	starter := &fakeStarter{canEmbed: true, handle: handle}
	if opts.Timeout == 0 {
		opts.Timeout = time.Minute
	}

	view := pager.NewView(source, ownerID, opts)
	require.NoError(t, view.Start(context.Background(), starter, "", false))
	require.Equal(t, pager.StateActive, view.State())
	return view, starter, handle
}

func controlByAction(t *testing.T, controls []pager.Control, action pager.Action) pager.Control {
	t.Helper()
	for _, c := range controls {
		if c.Action == action {
			return c
		}
	}
	t.Fatalf("control %q not found", action)
	return pager.Control{}
}

func TestViewStart(t *testing.T) {
	view, starter, _ := startView(t, newTextSource(t, 12, 5), pager.Options{CheckEmbeds: true})

	require.Len(t, starter.created, 1)
	assert.Equal(t, 0, view.CurrentPage())
	assert.Equal(t, "page 1/3 (5 items)", starter.created[0].page.Content())

	controls := starter.created[0].controls
	require.Len(t, controls, 5)
	assert.True(t, controlByAction(t, controls, pager.ActionFirst).Disabled)
	assert.True(t, controlByAction(t, controls, pager.ActionPrevious).Disabled)
	assert.False(t, controlByAction(t, controls, pager.ActionStop).Disabled)
	assert.False(t, controlByAction(t, controls, pager.ActionNext).Disabled)
	assert.False(t, controlByAction(t, controls, pager.ActionLast).Disabled)
}

func TestViewStartSinglePageNoControls(t *testing.T) {
	_, starter, _ := startView(t, newTextSource(t, 3, 5), pager.Options{})

	require.Len(t, starter.created, 1)
	assert.Empty(t, starter.created[0].controls)
}

func TestViewStartMissingEmbedPermissions(t *testing.T) {
	starter := &fakeStarter{canEmbed: false, handle: &fakeHandle{}}
	view := pager.NewView(newTextSource(t, 12, 5), ownerID, pager.Options{CheckEmbeds: true})

	err := view.Start(context.Background(), starter, "", false)
	assert.ErrorIs(t, err, pager.ErrMissingEmbedPermission)
	assert.Equal(t, pager.StateIdle, view.State())
	assert.Empty(t, starter.created)
	assert.Equal(t, []string{pager.MissingEmbedPermissionsMessage}, starter.ephemerals)
}

func TestViewStartTwice(t *testing.T) {
	view, starter, _ := startView(t, newTextSource(t, 12, 5), pager.Options{})
	assert.ErrorIs(t, view.Start(context.Background(), starter, "", false), pager.ErrAlreadyStarted)
	assert.Len(t, starter.created, 1)
}

func TestViewStartDefaultContent(t *testing.T) {
	source := newTextSource(t, 12, 5)
	handle := &fakeHandle{}
	starter := &fakeStarter{canEmbed: true, handle: handle}
	view := pager.NewView(source, ownerID, pager.Options{Timeout: time.Minute})

	// The source renders text of its own, so the intro must not clobber it.
	require.NoError(t, view.Start(context.Background(), starter, "intro line", false))
	require.Len(t, starter.created, 1)
	assert.Equal(t, "page 1/3 (5 items)", starter.created[0].page.Content())
}

func TestViewStartEphemeral(t *testing.T) {
	handle := &fakeHandle{}
	starter := &fakeStarter{canEmbed: true, handle: handle}
	view := pager.NewView(newTextSource(t, 12, 5), ownerID, pager.Options{Timeout: time.Minute})

	require.NoError(t, view.Start(context.Background(), starter, "", true))
	require.Equal(t, []bool{true}, starter.createdHidden)
}

func TestViewRejectsForeignUser(t *testing.T) {
	reporter := &fakeReporter{}
	view, _, handle := startView(t, newTextSource(t, 12, 5), pager.Options{Reporter: reporter})

	ed := &fakeEditor{}
	view.HandleButton(context.Background(), intruderID, pager.ActionNext, ed)

	assert.False(t, view.Authorize(intruderID))
	assert.True(t, view.Authorize(ownerID))
	assert.Equal(t, []string{pager.NotForYouMessage}, ed.ephemerals)
	assert.Empty(t, ed.edits)
	assert.Empty(t, handle.edits)
	assert.Empty(t, reporter.reports)
	assert.Equal(t, 0, view.CurrentPage())
	assert.Equal(t, pager.StateActive, view.State())
}

func TestViewNavigation(t *testing.T) {
	view, _, _ := startView(t, newTextSource(t, 12, 5), pager.Options{})

	t.Run("next advances", func(t *testing.T) {
		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)
		require.Len(t, ed.edits, 1)
		assert.Equal(t, 1, view.CurrentPage())
		assert.Equal(t, "page 2/3 (5 items)", ed.edits[0].page.Content())

		controls := ed.edits[0].controls
		assert.False(t, controlByAction(t, controls, pager.ActionFirst).Disabled)
		assert.False(t, controlByAction(t, controls, pager.ActionPrevious).Disabled)
		assert.False(t, controlByAction(t, controls, pager.ActionNext).Disabled)
		assert.False(t, controlByAction(t, controls, pager.ActionLast).Disabled)
	})

	t.Run("last jumps to final page", func(t *testing.T) {
		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionLast, ed)
		require.Len(t, ed.edits, 1)
		assert.Equal(t, 2, view.CurrentPage())
		assert.Equal(t, "page 3/3 (2 items)", ed.edits[0].page.Content())

		controls := ed.edits[0].controls
		assert.True(t, controlByAction(t, controls, pager.ActionNext).Disabled)
		assert.True(t, controlByAction(t, controls, pager.ActionLast).Disabled)
		assert.False(t, controlByAction(t, controls, pager.ActionFirst).Disabled)
		assert.False(t, controlByAction(t, controls, pager.ActionPrevious).Disabled)
	})

	t.Run("first jumps back", func(t *testing.T) {
		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionFirst, ed)
		require.Len(t, ed.edits, 1)
		assert.Equal(t, 0, view.CurrentPage())

		controls := ed.edits[0].controls
		assert.True(t, controlByAction(t, controls, pager.ActionFirst).Disabled)
		assert.True(t, controlByAction(t, controls, pager.ActionPrevious).Disabled)
	})
}

func TestViewCheckedPageBounds(t *testing.T) {
	t.Run("previous at first page", func(t *testing.T) {
		view, _, _ := startView(t, newTextSource(t, 12, 5), pager.Options{})

		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionPrevious, ed)
		assert.Empty(t, ed.edits)
		assert.Equal(t, 1, ed.acks)
		assert.Equal(t, 0, view.CurrentPage())
	})

	t.Run("next at last page", func(t *testing.T) {
		view, _, _ := startView(t, newTextSource(t, 12, 5), pager.Options{})
		view.HandleButton(context.Background(), ownerID, pager.ActionLast, &fakeEditor{})
		require.Equal(t, 2, view.CurrentPage())

		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)
		assert.Empty(t, ed.edits)
		assert.Equal(t, 1, ed.acks)
		assert.Equal(t, 2, view.CurrentPage())
	})
}

func TestViewCompactControls(t *testing.T) {
	view, starter, _ := startView(t, newTextSource(t, 12, 5), pager.Options{Compact: true})

	controls := starter.created[0].controls
	require.Len(t, controls, 3)
	assert.Equal(t, pager.ActionPrevious, controls[0].Action)
	assert.Equal(t, pager.ActionStop, controls[1].Action)
	assert.Equal(t, pager.ActionNext, controls[2].Action)
	assert.True(t, controls[0].Disabled)
	assert.False(t, controls[2].Disabled)

	ed := &fakeEditor{}
	view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)
	require.Len(t, ed.edits, 1)
	assert.False(t, controlByAction(t, ed.edits[0].controls, pager.ActionPrevious).Disabled)
}

func TestViewUnknownPageCount(t *testing.T) {
	source := &endlessSource{textSource: newTextSource(t, 12, 5)}
	view, _, _ := startView(t, source, pager.Options{})

	t.Run("next past the end is absorbed", func(t *testing.T) {
		for range 2 {
			view.HandleButton(context.Background(), ownerID, pager.ActionNext, &fakeEditor{})
		}
		require.Equal(t, 2, view.CurrentPage())

		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)
		assert.Empty(t, ed.edits)
		assert.Equal(t, 1, ed.acks)
		assert.Equal(t, 2, view.CurrentPage())
	})

	t.Run("last is a no-op", func(t *testing.T) {
		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionLast, ed)
		assert.Empty(t, ed.edits)
		assert.Equal(t, 1, ed.acks)
		assert.Equal(t, 2, view.CurrentPage())
	})
}

func TestViewStop(t *testing.T) {
	ended := make([]string, 0, 1)
	view, _, handle := startView(t, newTextSource(t, 12, 5), pager.Options{
		OnEnd: func(viewID string) { ended = append(ended, viewID) },
	})

	ed := &fakeEditor{}
	view.HandleButton(context.Background(), ownerID, pager.ActionStop, ed)
	assert.Equal(t, pager.StateStopped, view.State())
	assert.Equal(t, 1, handle.deletes)
	assert.Equal(t, []string{view.ID()}, ended)

	// A racing second press is absorbed without another delete.
	ed2 := &fakeEditor{}
	view.HandleButton(context.Background(), ownerID, pager.ActionStop, ed2)
	assert.Equal(t, 1, handle.deletes)
	assert.Equal(t, pager.StateStopped, view.State())
}

func TestViewTimeoutDisablesControls(t *testing.T) {
	view, _, handle := startView(t, newTextSource(t, 12, 5), pager.Options{Timeout: 20 * time.Millisecond})

	require.Eventually(t, func() bool {
		return view.State() == pager.StateTimedOut
	}, time.Second, 5*time.Millisecond)

	require.Len(t, handle.edits, 1)
	for _, c := range handle.edits[0].controls {
		assert.True(t, c.Disabled, "control %q should be disabled", c.Action)
	}
	assert.Equal(t, 0, handle.deletes)
}

func TestViewTimeoutAfterStop(t *testing.T) {
	view, _, handle := startView(t, newTextSource(t, 12, 5), pager.Options{})

	view.HandleButton(context.Background(), ownerID, pager.ActionStop, &fakeEditor{})
	require.Equal(t, pager.StateStopped, view.State())

	view.OnTimeout(context.Background())
	assert.Equal(t, pager.StateStopped, view.State())
	assert.Empty(t, handle.edits)
}

func TestViewErrorCapture(t *testing.T) {
	t.Run("commit failure", func(t *testing.T) {
		reporter := &fakeReporter{}
		view, _, _ := startView(t, newTextSource(t, 12, 5), pager.Options{Reporter: reporter})

		ed := &fakeEditor{editErr: errors.New("edit rejected")}
		view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)

		assert.Equal(t, []string{pager.GenericErrorMessage}, ed.ephemerals)
		require.Len(t, reporter.reports, 1)
		report := reporter.reports[0]
		assert.Equal(t, pager.ActionNext, report.Action)
		assert.Equal(t, ownerID, report.UserID)
		assert.Contains(t, report.Message, "edit rejected")
		assert.False(t, report.Timestamp.IsZero())

		// The session survives and the page index rolled back.
		assert.Equal(t, pager.StateActive, view.State())
		assert.Equal(t, 0, view.CurrentPage())
	})

	t.Run("format failure", func(t *testing.T) {
		reporter := &fakeReporter{}
		source := newTextSource(t, 12, 5)
		view, _, _ := startView(t, source, pager.Options{Reporter: reporter})

		source.formatErr = errors.New("render broke")
		ed := &fakeEditor{}
		view.HandleButton(context.Background(), ownerID, pager.ActionNext, ed)

		assert.Equal(t, []string{pager.GenericErrorMessage}, ed.ephemerals)
		require.Len(t, reporter.reports, 1)
		assert.Equal(t, pager.StateActive, view.State())
		assert.Equal(t, 0, view.CurrentPage())
	})
}

func TestParseCustomID(t *testing.T) {
	tests := []struct {
		name     string
		customID string
		wantOK   bool
		wantAct  pager.Action
	}{
		{name: "valid", customID: "pager:abc-123:next", wantOK: true, wantAct: pager.ActionNext},
		{name: "wrong prefix", customID: "modal:abc:next", wantOK: false},
		{name: "too few parts", customID: "pager:next", wantOK: false},
		{name: "empty", customID: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewID, action, ok := pager.ParseCustomID(tt.customID)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "abc-123", viewID)
				assert.Equal(t, tt.wantAct, action)
			}
		})
	}
}
