package interaction

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/twdlabs/pagebot/internal/bot/constants"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
	"github.com/twdlabs/pagebot/internal/bot/interfaces"
	"go.uber.org/zap"
)

// ChannelReporter delivers failure reports as embeds to the owner-visible
// report channel. The guild and channel of the originating invocation are
// captured at construction so every report carries its context.
type ChannelReporter struct {
	client          bot.Client
	reportChannelID snowflake.ID
	guildID         *snowflake.ID
	originChannelID snowflake.ID
	logger          *zap.Logger
}

// NewChannelReporter builds a reporter bound to the invocation context of
// the given event. A zero report channel ID yields a reporter that only logs.
func NewChannelReporter(event interfaces.CommonEvent, reportChannelID snowflake.ID, logger *zap.Logger) *ChannelReporter {
	return &ChannelReporter{
		client:          event.Client(),
		reportChannelID: reportChannelID,
		guildID:         event.GuildID(),
		originChannelID: event.ChannelID(),
		logger:          logger,
	}
}

// Report implements pager.Reporter. Delivery failures are swallowed; a
// broken report path must never cascade into the session.
func (r *ChannelReporter) Report(ctx context.Context, report *pager.ErrorReport) {
	if r.reportChannelID == 0 {
		r.logger.Warn("No report channel configured, dropping error report",
			zap.String("title", report.Title),
			zap.String("message", report.Message))
		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(report.Title).
		SetDescription(fmt.Sprintf("```\n%s\n```", report.Message)).
		SetColor(constants.ErrorEmbedColor).
		SetTimestamp(report.Timestamp).
		AddField("User", fmt.Sprintf("<@%d> (%d)", report.UserID, report.UserID), true).
		AddField("Channel", fmt.Sprintf("<#%d>", r.originChannelID), true)

	// Reports from outside a button transition carry no action.
	if report.Action != "" {
		embed.AddField("Action", string(report.Action), true)
	}

	if r.guildID != nil {
		embed.AddField("Guild", r.guildID.String(), true)
	}

	_, err := r.client.Rest().CreateMessage(r.reportChannelID,
		discord.NewMessageCreateBuilder().SetEmbeds(embed.Build()).Build(),
		rest.WithCtx(ctx))
	if err != nil {
		r.logger.Debug("Failed to deliver error report", zap.Error(err))
	}
}
