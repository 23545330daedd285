package interaction

import (
	"context"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
)

// Responder is the initial-response surface shared by command and component
// interaction events.
type Responder interface {
	CreateMessage(messageCreate discord.MessageCreate, opts ...rest.RequestOpt) error
}

var (
	_ Responder = (*events.ApplicationCommandInteractionCreate)(nil)
	_ Responder = (*events.ComponentInteractionCreate)(nil)
)

// CommandStarter adapts a slash command interaction to the pager's Starter
// interface, posting the session's first message as the command response.
type CommandStarter struct {
	event *events.ApplicationCommandInteractionCreate
}

// NewCommandStarter wraps a slash command event.
func NewCommandStarter(event *events.ApplicationCommandInteractionCreate) *CommandStarter {
	return &CommandStarter{event: event}
}

// CanEmbed reports whether the bot may render embeds in the invoking channel.
// AppPermissions is nil in DM contexts, where embeds are always allowed.
func (s *CommandStarter) CanEmbed() bool {
	perms := s.event.AppPermissions()
	return perms == nil || perms.Has(discord.PermissionEmbedLinks)
}

// CreateMessage posts the first page and returns a handle to the resulting
// message for the timeout and stop paths.
func (s *CommandStarter) CreateMessage(
	ctx context.Context, page *pager.RenderedPage, controls []pager.Control, ephemeral bool,
) (pager.Handle, error) {
	builder := discord.NewMessageCreateBuilder().SetEphemeral(ephemeral)
	applyPageToCreate(builder, page)
	if rows := buildActionRows(controls); len(rows) > 0 {
		builder.AddContainerComponents(rows...)
	}

	if err := s.event.CreateMessage(builder.Build()); err != nil {
		return nil, err
	}

	message, err := s.event.Client().Rest().GetInteractionResponse(
		s.event.ApplicationID(), s.event.Token(), rest.WithCtx(ctx))
	if err != nil {
		return nil, err
	}

	return &messageHandle{
		client:        s.event.Client(),
		applicationID: s.event.ApplicationID(),
		token:         s.event.Token(),
		channelID:     message.ChannelID,
		messageID:     message.ID,
		ephemeral:     ephemeral,
	}, nil
}

// SendEphemeral responds with a message only the invoker can see.
func (s *CommandStarter) SendEphemeral(_ context.Context, content string) error {
	return s.event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
}

// ComponentEditor adapts a button press to the pager's Editor interface.
// It tracks whether the interaction has been responded to so follow-up
// messages take the right REST path, mirroring Discord's one-response rule.
type ComponentEditor struct {
	event     *events.ComponentInteractionCreate
	responded bool
}

// NewComponentEditor wraps a component interaction event.
func NewComponentEditor(event *events.ComponentInteractionCreate) *ComponentEditor {
	return &ComponentEditor{event: event}
}

// Ack acknowledges the press without visibly changing the message.
func (e *ComponentEditor) Ack(context.Context) error {
	if e.responded {
		return nil
	}
	if err := e.event.DeferUpdateMessage(); err != nil {
		return err
	}
	e.responded = true
	return nil
}

// EditMessage commits content and control states in a single update.
func (e *ComponentEditor) EditMessage(
	ctx context.Context, page *pager.RenderedPage, controls []pager.Control,
) error {
	update := buildMessageUpdate(page, controls)

	if e.responded {
		_, err := e.event.Client().Rest().UpdateInteractionResponse(
			e.event.ApplicationID(), e.event.Token(), update, rest.WithCtx(ctx))
		return err
	}

	if err := e.event.UpdateMessage(update); err != nil {
		return err
	}
	e.responded = true
	return nil
}

// SendEphemeral notifies the pressing user privately, as the initial
// response or as a followup depending on what already happened.
func (e *ComponentEditor) SendEphemeral(ctx context.Context, content string) error {
	message := discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build()

	if e.responded {
		_, err := e.event.Client().Rest().CreateFollowupMessage(
			e.event.ApplicationID(), e.event.Token(), message, rest.WithCtx(ctx))
		return err
	}

	if err := e.event.CreateMessage(message); err != nil {
		return err
	}
	e.responded = true
	return nil
}

// messageHandle is the long-lived reference to a session's live message.
// Ephemeral responses are only addressable through the interaction token,
// so the handle keeps both routes.
type messageHandle struct {
	client        bot.Client
	applicationID snowflake.ID
	token         string
	channelID     snowflake.ID
	messageID     snowflake.ID
	ephemeral     bool
}

func (h *messageHandle) Edit(ctx context.Context, page *pager.RenderedPage, controls []pager.Control) error {
	update := buildMessageUpdate(page, controls)
	if h.ephemeral {
		_, err := h.client.Rest().UpdateInteractionResponse(
			h.applicationID, h.token, update, rest.WithCtx(ctx))
		return err
	}
	_, err := h.client.Rest().UpdateMessage(h.channelID, h.messageID, update, rest.WithCtx(ctx))
	return err
}

func (h *messageHandle) Delete(ctx context.Context) error {
	if h.ephemeral {
		return h.client.Rest().DeleteInteractionResponse(h.applicationID, h.token, rest.WithCtx(ctx))
	}
	return h.client.Rest().DeleteMessage(h.channelID, h.messageID, rest.WithCtx(ctx))
}

// buildActionRows turns the view's control list into button components.
func buildActionRows(controls []pager.Control) []discord.ContainerComponent {
	if len(controls) == 0 {
		return nil
	}

	buttons := make([]discord.InteractiveComponent, 0, len(controls))
	for _, control := range controls {
		var button discord.ButtonComponent
		if control.Danger {
			button = discord.NewDangerButton(control.Label, control.CustomID)
		} else {
			button = discord.NewPrimaryButton(control.Label, control.CustomID)
		}
		if control.Emoji != "" {
			button = button.WithEmoji(discord.ComponentEmoji{Name: control.Emoji})
		}
		buttons = append(buttons, button.WithDisabled(control.Disabled))
	}

	return []discord.ContainerComponent{discord.NewActionRow(buttons...)}
}

// buildMessageUpdate resolves the rendered page variant into a combined
// content-plus-components update.
func buildMessageUpdate(page *pager.RenderedPage, controls []pager.Control) discord.MessageUpdate {
	builder := discord.NewMessageUpdateBuilder().RetainAttachments()

	switch page.Kind() {
	case pager.RenderText:
		builder.SetContent(page.Content()).ClearEmbeds()
	case pager.RenderEmbed:
		builder.SetContent("").SetEmbeds(page.Embeds()...)
	case pager.RenderComposite:
		builder.SetContent(page.Content()).SetEmbeds(page.Embeds()...)
	}

	builder.SetContainerComponents(buildActionRows(controls)...)
	return builder.Build()
}

// applyPageToCreate is buildMessageUpdate's counterpart for the initial message.
func applyPageToCreate(builder *discord.MessageCreateBuilder, page *pager.RenderedPage) {
	switch page.Kind() {
	case pager.RenderText:
		builder.SetContent(page.Content())
	case pager.RenderEmbed:
		builder.SetEmbeds(page.Embeds()...)
	case pager.RenderComposite:
		builder.SetContent(page.Content()).SetEmbeds(page.Embeds()...)
	}
}
