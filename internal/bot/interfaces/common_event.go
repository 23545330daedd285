package interfaces

import (
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// CommonEvent is the subset of interaction event methods shared by the
// command and component events the bot handles.
type CommonEvent interface {
	Client() bot.Client
	ApplicationID() snowflake.ID
	Token() string
	User() discord.User
	GuildID() *snowflake.ID
	ChannelID() snowflake.ID
	AppPermissions() *discord.Permissions
}

// Ensure that all event types implement the CommonEvent interface.
var (
	_ CommonEvent = (*events.ApplicationCommandInteractionCreate)(nil)
	_ CommonEvent = (*events.ComponentInteractionCreate)(nil)
)
