package bot

import (
	"context"
	"sync"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"go.uber.org/zap"

	"github.com/twdlabs/pagebot/internal/bot/constants"
	"github.com/twdlabs/pagebot/internal/bot/core/interaction"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
	"github.com/twdlabs/pagebot/internal/bot/menu/servers"
	"github.com/twdlabs/pagebot/internal/setup/config"
)

// Bot wires the Discord client to the command menus and routes component
// interactions to their owning pagination sessions.
type Bot struct {
	config      *config.Config
	client      bot.Client
	logger      *zap.Logger
	serversMenu *servers.Menu

	mu    sync.Mutex
	views map[string]*pager.View
}

// New initializes a Bot instance and configures the Discord client with the
// necessary gateway intents and event listeners.
func New(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	b := &Bot{
		config: cfg,
		logger: logger.Named("bot"),
		views:  make(map[string]*pager.View),
	}
	b.serversMenu = servers.NewMenu(cfg, b, logger)

	client, err := disgo.New(cfg.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	return b, nil
}

// Start registers global commands with Discord and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	_, err := b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), []discord.ApplicationCommandCreate{
		discord.SlashCommandCreate{
			Name:        constants.ServersCommandName,
			Description: "List every server the bot is in",
		},
	})
	if err != nil {
		return err
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)
}

// Register implements servers.ViewRegistry.
func (b *Bot) Register(view *pager.View) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.views[view.ID()] = view
}

// Unregister implements servers.ViewRegistry.
func (b *Bot) Unregister(viewID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.views, viewID)
}

// lookupView returns the live session with the given ID, if any.
func (b *Bot) lookupView(viewID string) (*pager.View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	view, ok := b.views[viewID]

	return view, ok
}

// handleApplicationCommandInteraction processes slash commands in a goroutine
// so slow REST calls never block the gateway reader.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler", zap.Any("panic", r))
			}

			b.logger.Debug("Application command interaction handled",
				zap.String("command", event.SlashCommandInteractionData().CommandName()),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(context.Background(), b.config.Bot.RequestTimeoutDuration())
		defer cancel()

		if event.SlashCommandInteractionData().CommandName() != constants.ServersCommandName {
			b.respondEphemeral(event, constants.UnknownCommandText)
			return
		}

		b.serversMenu.Handle(ctx, event)
	}()
}

// handleComponentInteraction routes button presses to the session named in
// the custom ID. Presses for sessions that already ended get the expiry notice.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component interaction handler", zap.Any("panic", r))
			}

			b.logger.Debug("Component interaction handled",
				zap.String("custom_id", event.Data.CustomID()),
				zap.Duration("duration", time.Since(start)))
		}()

		viewID, action, ok := pager.ParseCustomID(event.Data.CustomID())
		if !ok {
			// Not one of ours.
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), b.config.Bot.RequestTimeoutDuration())
		defer cancel()

		view, found := b.lookupView(viewID)
		if !found {
			b.respondEphemeral(event, constants.ExpiredMenuMessage)
			return
		}

		// The view takes its own lock and may call back into Unregister, so
		// the registry lock must not be held here.
		view.HandleButton(ctx, event.User().ID, action, interaction.NewComponentEditor(event))
	}()
}

// respondEphemeral sends a private notice as the interaction response.
func (b *Bot) respondEphemeral(event interaction.Responder, content string) {
	if err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build(),
	); err != nil {
		b.logger.Debug("Failed to send ephemeral response", zap.Error(err))
	}
}
