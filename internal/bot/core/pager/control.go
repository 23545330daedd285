package pager

import (
	"fmt"
	"strings"
)

// Action identifies a navigation control.
type Action string

const (
	ActionFirst    Action = "first"
	ActionPrevious Action = "previous"
	ActionStop     Action = "stop"
	ActionNext     Action = "next"
	ActionLast     Action = "last"
)

// CustomIDPrefix namespaces every control custom ID emitted by the pager so
// the component router can tell pager traffic apart from other components.
const CustomIDPrefix = "pager"

// Control describes one navigation button the adapter should render.
// The view owns the list of controls and their enablement; adapters only
// translate them into toolkit widgets.
type Control struct {
	Action   Action
	CustomID string
	Label    string
	Emoji    string
	Danger   bool
	Disabled bool
}

// ParseCustomID splits a control custom ID back into its view ID and action.
// The second return is false when the ID was not produced by the pager.
func ParseCustomID(customID string) (viewID string, action Action, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != CustomIDPrefix {
		return "", "", false
	}
	return parts[1], Action(parts[2]), true
}

// controlCustomID builds the wire custom ID for one of this view's controls.
func (v *View) controlCustomID(action Action) string {
	return fmt.Sprintf("%s:%s:%s", CustomIDPrefix, v.id, action)
}

// controlsLocked computes the control list with current enablement.
// First/Previous are disabled on page 0 and Next/Last on the final page; in
// compact mode First/Last are absent and Next/Previous are evaluated
// independently. Callers must hold v.mu.
func (v *View) controlsLocked() []Control {
	if !v.source.IsPaginating() {
		return nil
	}

	count, known := v.source.PageCount()

	first := Control{
		Action:   ActionFirst,
		CustomID: v.controlCustomID(ActionFirst),
		Label:    "First",
		Emoji:    "⏮️",
		Disabled: v.currentPage == 0,
	}
	previous := Control{
		Action:   ActionPrevious,
		CustomID: v.controlCustomID(ActionPrevious),
		Label:    "Previous",
		Emoji:    "◀️",
	}
	stop := Control{
		Action:   ActionStop,
		CustomID: v.controlCustomID(ActionStop),
		Label:    "Quit",
		Emoji:    "✖️",
		Danger:   true,
	}
	next := Control{
		Action:   ActionNext,
		CustomID: v.controlCustomID(ActionNext),
		Label:    "Next",
		Emoji:    "▶️",
	}
	last := Control{
		Action:   ActionLast,
		CustomID: v.controlCustomID(ActionLast),
		Label:    "Last",
		Emoji:    "⏭️",
	}

	if v.compact {
		previous.Disabled = v.currentPage == 0
		next.Disabled = known && v.currentPage+1 >= count
		return []Control{previous, stop, next}
	}

	if known {
		atLast := v.currentPage+1 >= count
		last.Disabled = atLast
		next.Disabled = atLast
		previous.Disabled = v.currentPage == 0
	}

	return []Control{first, previous, stop, next, last}
}

// disableAll returns a copy of the controls with every button disabled.
// Used by the timeout path so the message keeps its layout but goes inert.
func disableAll(controls []Control) []Control {
	disabled := make([]Control, len(controls))
	for i, c := range controls {
		c.Disabled = true
		disabled[i] = c
	}
	return disabled
}
