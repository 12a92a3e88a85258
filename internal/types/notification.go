package types

// Locale selects the language used for generated notification text.
type Locale string

const (
	LocaleSpanish Locale = "es"
	LocaleEnglish Locale = "en"
)

// NotificationMessage is the canonical chat notification produced by the
// normalization pipeline. It is channel-agnostic: the delivery layer maps it
// onto the destination platform's wire format (a Discord webhook payload with
// one rich embed, currently).
//
// A NotificationMessage is a pure function of the incoming event and the
// process configuration. It is constructed fresh per event and discarded after
// delivery; nothing persists between events.
type NotificationMessage struct {
	// Content is the plain-text headline, e.g. "➕ **New Design element: Boss Fight**".
	Content string `json:"content"`

	// Embed is the structured portion of the notification.
	Embed Embed `json:"embed"`
}

// Embed is the structured (title/description/url/fields) portion of a chat
// notification, distinct from its plain-text headline.
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`

	// URL links the embed title to the source entity. Empty means no link:
	// either no template is configured, rendering failed, or the link was
	// suppressed because the target page no longer exists.
	URL string `json:"url,omitempty"`

	// Fields is the ordered list of named values shown under the description.
	// Absent optional values are omitted entirely, never rendered as placeholders.
	Fields []EmbedField `json:"fields"`
}

// EmbedField is a single named value within an embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}
