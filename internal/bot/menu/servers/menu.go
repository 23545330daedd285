package servers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"github.com/twdlabs/pagebot/internal/bot/constants"
	"github.com/twdlabs/pagebot/internal/bot/core/interaction"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
	"github.com/twdlabs/pagebot/internal/setup/config"
	"go.uber.org/zap"
)

// guildFetchLimit is the page size for listing the bot's own guilds.
const guildFetchLimit = 200

// guildAPI is the slice of the REST surface the listing needs.
type guildAPI interface {
	GetCurrentUserGuilds(bearerToken string, before snowflake.ID, after snowflake.ID, limit int, withCounts bool, opts ...rest.RequestOpt) ([]discord.OAuth2Guild, error)
	GetGuildInvites(guildID snowflake.ID, opts ...rest.RequestOpt) ([]discord.ExtendedInvite, error)
}

var _ guildAPI = (rest.Rest)(nil)

// ViewRegistry tracks live pagination sessions so the component router can
// dispatch button presses to them.
type ViewRegistry interface {
	Register(view *pager.View)
	Unregister(viewID string)
}

// Menu handles the servers command: it gathers every guild the bot is in,
// resolves an invite for each, and opens a paginated listing session.
type Menu struct {
	config   *config.Config
	registry ViewRegistry
	logger   *zap.Logger
}

// NewMenu creates a Menu instance.
func NewMenu(cfg *config.Config, registry ViewRegistry, logger *zap.Logger) *Menu {
	return &Menu{
		config:   cfg,
		registry: registry,
		logger:   logger.Named("servers"),
	}
}

// Handle processes one servers command invocation.
func (m *Menu) Handle(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if uint64(event.User().ID) != m.config.Discord.OwnerID {
		if err := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(constants.OwnerOnlyMessage).
			SetEphemeral(true).
			Build(),
		); err != nil {
			m.logger.Debug("Failed to send owner denial", zap.Error(err))
		}

		return
	}

	reporter := interaction.NewChannelReporter(event,
		snowflake.ID(m.config.Discord.ReportChannelID), m.logger)

	entries, err := m.fetchGuildEntries(ctx, event.Client().Rest())
	if err != nil {
		m.logger.Error("Failed to fetch guild listing", zap.Error(err))

		if sendErr := event.CreateMessage(discord.NewMessageCreateBuilder().
			SetContent(pager.GenericErrorMessage).
			SetEphemeral(true).
			Build(),
		); sendErr != nil {
			m.logger.Debug("Failed to send generic error notice", zap.Error(sendErr))
		}

		reporter.Report(ctx, &pager.ErrorReport{
			Title:     "Guild Listing Error",
			Message:   err.Error(),
			UserID:    event.User().ID,
			Timestamp: time.Now(),
		})

		return
	}

	source, err := NewGuildSource(entries, m.config.Bot.GuildsPerPage)
	if err != nil {
		m.logger.Error("Failed to build guild source", zap.Error(err))
		return
	}

	view := pager.NewView(source, event.User().ID, pager.Options{
		Compact:     m.config.Bot.Compact,
		CheckEmbeds: true,
		Timeout:     m.config.Bot.SessionTimeoutDuration(),
		Reporter:    reporter,
		Logger:      m.logger,
		OnEnd:       m.registry.Unregister,
	})

	// Registered before Start so a button press racing the initial message
	// still finds its session.
	m.registry.Register(view)

	// The listing is owner-only, so it stays visible to the owner alone.
	if err := view.Start(ctx, interaction.NewCommandStarter(event), constants.ServerListIntro, true); err != nil {
		m.registry.Unregister(view.ID())

		if errors.Is(err, pager.ErrMissingEmbedPermission) {
			// The invoker already got the ephemeral fallback.
			m.logger.Debug("Guild listing refused, channel cannot render embeds")
			return
		}

		m.logger.Error("Failed to start guild listing session", zap.Error(err))
		reporter.Report(ctx, &pager.ErrorReport{
			Title:     fmt.Sprintf("%T Error", source),
			Message:   err.Error(),
			UserID:    event.User().ID,
			Timestamp: time.Now(),
		})
	}
}

// fetchGuildEntries lists every guild the bot belongs to and resolves an
// invite URL for each concurrently. Guilds without a resolvable invite keep
// an empty URL rather than failing the whole listing.
func (m *Menu) fetchGuildEntries(ctx context.Context, api guildAPI) ([]GuildEntry, error) {
	guilds, err := m.fetchAllGuilds(ctx, api)
	if err != nil {
		return nil, fmt.Errorf("list guilds: %w", err)
	}

	entries := make([]GuildEntry, len(guilds))

	p := pool.New().
		WithContext(ctx).
		WithMaxGoroutines(m.config.Bot.InviteConcurrency)

	for i, guild := range guilds {
		p.Go(func(ctx context.Context) error {
			entries[i] = GuildEntry{
				Name:      guild.Name,
				InviteURL: m.fetchInviteURL(ctx, api, guild.ID, guild.Name),
			}

			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("resolve invites: %w", err)
	}

	return entries, nil
}

// fetchAllGuilds pages through the bot's guild list. The empty bearer token
// selects the bot-token authentication path.
func (m *Menu) fetchAllGuilds(ctx context.Context, api guildAPI) ([]discord.OAuth2Guild, error) {
	var (
		guilds []discord.OAuth2Guild
		after  snowflake.ID
	)

	for {
		page, err := api.GetCurrentUserGuilds("", 0, after, guildFetchLimit, false, rest.WithCtx(ctx))
		if err != nil {
			return nil, err
		}

		guilds = append(guilds, page...)

		if len(page) < guildFetchLimit {
			return guilds, nil
		}

		after = page[len(page)-1].ID
	}
}

// fetchInviteURL returns an existing invite link for the guild, retrying
// transient failures. Returns an empty string when no invite can be resolved;
// missing permissions in a guild are expected and not worth failing over.
func (m *Menu) fetchInviteURL(ctx context.Context, api guildAPI, guildID snowflake.ID, guildName string) string {
	var invites []discord.ExtendedInvite

	operation := func() error {
		var err error

		invites, err = api.GetGuildInvites(guildID, rest.WithCtx(ctx))

		return err
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(200*time.Millisecond),
		backoff.WithMaxInterval(2*time.Second),
	), m.config.Bot.InviteRetries)

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		m.logger.Debug("Failed to fetch guild invites",
			zap.String("guild", guildName),
			zap.Error(err))

		return ""
	}

	if len(invites) == 0 {
		return ""
	}

	return "https://discord.gg/" + invites[0].Code
}
