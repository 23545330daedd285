package servers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/twdlabs/pagebot/internal/bot/constants"
	"github.com/twdlabs/pagebot/internal/bot/core/pager"
	"github.com/twdlabs/pagebot/internal/bot/utils"
)

// GuildEntry is one row of the server listing.
type GuildEntry struct {
	Name      string
	InviteURL string
}

// GuildSource renders pages of guild entries as a titled embed.
type GuildSource struct {
	*pager.ListSource
}

// NewGuildSource creates a source over the given guild entries.
func NewGuildSource(entries []GuildEntry, perPage int) (*GuildSource, error) {
	items := make([]any, len(entries))
	for i, entry := range entries {
		items[i] = entry
	}

	list, err := pager.NewListSource(items, perPage)
	if err != nil {
		return nil, err
	}

	return &GuildSource{ListSource: list}, nil
}

// FormatPage implements pager.PageSource. Each guild becomes one line of the
// embed description; guilds without a usable invite get a placeholder.
func (s *GuildSource) FormatPage(_ context.Context, info pager.PageInfo, entries []any) (*pager.RenderedPage, error) {
	lines := make([]string, 0, len(entries))

	for _, item := range entries {
		entry, ok := item.(GuildEntry)
		if !ok {
			return nil, fmt.Errorf("unexpected entry type %T", item)
		}

		invite := entry.InviteURL
		if invite == "" {
			invite = constants.NoInviteText
		}

		lines = append(lines, fmt.Sprintf("%s: %s", utils.NormalizeString(entry.Name), invite))
	}

	description := strings.Join(lines, "\n\n")
	if description == "" {
		description = constants.NoGuildsText
	}

	embed := discord.NewEmbedBuilder().
		SetTitle(constants.ServerListTitle).
		SetDescription(utils.TruncateString(description, constants.EmbedDescriptionLimit)).
		SetColor(constants.DefaultEmbedColor).
		SetTimestamp(time.Now())

	if s.IsPaginating() && info.CountKnown {
		embed.SetFooter(fmt.Sprintf("Page %d/%d", info.CurrentPage+1, info.PageCount), "")
	}

	return pager.EmbedPage(embed.Build()), nil
}
