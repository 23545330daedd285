package pager

import "github.com/disgoorg/disgo/discord"

// RenderKind selects which variant of a RenderedPage is active.
type RenderKind int

const (
	// RenderText is a plain text message body.
	RenderText RenderKind = iota
	// RenderEmbed is a single structured embed with no text body.
	RenderEmbed
	// RenderComposite carries both a text body and one or more embeds.
	RenderComposite
)

// RenderedPage is the payload produced by formatting a page slice.
// Exactly one variant is active per render; adapters resolve it with an
// explicit switch on Kind rather than type inspection.
type RenderedPage struct {
	kind    RenderKind
	content string
	embeds  []discord.Embed
}

// TextPage creates a plain text page.
func TextPage(content string) *RenderedPage {
	return &RenderedPage{kind: RenderText, content: content}
}

// EmbedPage creates a page holding a single embed.
func EmbedPage(embed discord.Embed) *RenderedPage {
	return &RenderedPage{kind: RenderEmbed, embeds: []discord.Embed{embed}}
}

// CompositePage creates a page holding both a text body and embeds.
func CompositePage(content string, embeds ...discord.Embed) *RenderedPage {
	return &RenderedPage{kind: RenderComposite, content: content, embeds: embeds}
}

// Kind returns the active variant.
func (p *RenderedPage) Kind() RenderKind {
	return p.kind
}

// Content returns the text body. Empty for embed-only pages.
func (p *RenderedPage) Content() string {
	return p.content
}

// Embeds returns the structured content. Nil for text-only pages.
func (p *RenderedPage) Embeds() []discord.Embed {
	return p.embeds
}

// SetDefaultContent fills in a text body when the page doesn't already carry
// one, promoting an embed-only page to a composite. Used by Start to prepend
// the session's intro line without clobbering source-provided text.
func (p *RenderedPage) SetDefaultContent(content string) {
	if content == "" || p.content != "" {
		return
	}

	p.content = content
	if p.kind == RenderEmbed {
		p.kind = RenderComposite
	}
}
