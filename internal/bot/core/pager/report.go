package pager

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// ErrorReport is the structured failure record emitted when a transition
// fails. User-visible notices stay generic; diagnostic detail travels only
// through this value to the owner-visible report channel.
type ErrorReport struct {
	Title     string
	Message   string
	Action    Action
	UserID    snowflake.ID
	Timestamp time.Time
}

// Reporter delivers error reports to an owner-visible destination.
// Delivery is best-effort: implementations swallow their own failures so a
// broken report path can never cascade into the session.
type Reporter interface {
	Report(ctx context.Context, report *ErrorReport)
}

// NopReporter discards every report. Useful for sessions that have no
// configured report channel.
type NopReporter struct{}

// Report implements Reporter.
func (NopReporter) Report(context.Context, *ErrorReport) {}
