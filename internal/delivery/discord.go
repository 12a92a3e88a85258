// Package delivery sends normalized notifications to the configured Discord
// channel webhook. It owns everything the pure pipeline does not: the Discord
// wire format, the resilient outbound HTTP call (retries, circuit breaker),
// and the asynchronous dispatcher that keeps delivery off the inbound request
// path. Delivery failures are logged and dropped; the webhook source is never
// made to retry.
package delivery

import (
	"encoding/json"
	"fmt"

	"planrelay/internal/types"
)

// maxResponseBodyRead limits how much of a response body is read for error
// messages.
const maxResponseBodyRead = 4096

// --- Discord Payload Types (Embeds) ---

// DiscordPayload is the top-level structure for Discord webhook messages.
type DiscordPayload struct {
	Content string         `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents an embed in a Discord webhook message.
type DiscordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	Fields      []DiscordField `json:"fields,omitempty"`
}

// DiscordField is a field within a Discord embed.
type DiscordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// FormatDiscord transforms a NotificationMessage into Discord webhook JSON:
// the plain-text headline as content plus a single rich embed.
func FormatDiscord(msg types.NotificationMessage) ([]byte, error) {
	embed := DiscordEmbed{
		Title:       msg.Embed.Title,
		Description: msg.Embed.Description,
		URL:         msg.Embed.URL,
	}
	for _, f := range msg.Embed.Fields {
		embed.Fields = append(embed.Fields, DiscordField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return json.Marshal(DiscordPayload{
		Content: msg.Content,
		Embeds:  []DiscordEmbed{embed},
	})
}

// ValidateResponse checks the Discord webhook response. Discord returns 204
// No Content on success for webhook messages. Error bodies carry a "message"
// field worth surfacing.
func ValidateResponse(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(body, &resp); err == nil {
		if msg, ok := resp["message"].(string); ok {
			return fmt.Errorf("discord: API error: %s", msg)
		}
	}

	return fmt.Errorf("discord: unexpected status %d: %s", statusCode, truncateBody(body))
}

// truncateBody shortens a response body for log and error output.
func truncateBody(body []byte) string {
	const max = 200
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
