package constants

const (
	// Commands.
	ServersCommandName = "servers"

	// Guild listing.
	GuildsPerPage   = 5
	ServerListTitle = "Server List"
	ServerListIntro = "Here are the servers I'm in:"
	NoInviteText    = "No invite available"
	NoGuildsText    = "No guilds were found."

	// Embed colors.
	DefaultEmbedColor = 0x312D2B
	ErrorEmbedColor   = 0xCC3366

	// Discord caps the embed description length.
	EmbedDescriptionLimit = 4096

	// Messages.
	OwnerOnlyMessage   = "This command can only be used by the bot owner."
	ExpiredMenuMessage = "This menu has expired. Run the command again."
	UnknownCommandText = "This command is not available."
)
