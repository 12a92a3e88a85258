package delivery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrelay/internal/types"
)

func testMessage() types.NotificationMessage {
	return types.NotificationMessage{
		Content: "✏️ **Work item updated: Fix camera**",
		Embed: types.Embed{
			Title:       "Fix camera",
			Description: "The camera clips through walls.",
			URL:         "https://app.hacknplan.com/p/42/kanban?categoryId=0&boardId=3",
			Fields: []types.EmbedField{
				{Name: "Type", Value: "Bug", Inline: true},
				{Name: "ProjectId", Value: "42", Inline: true},
			},
		},
	}
}

// --- FormatDiscord Tests ---

func TestFormatDiscord_Structure(t *testing.T) {
	data, err := FormatDiscord(testMessage())
	require.NoError(t, err)

	var payload DiscordPayload
	require.NoError(t, json.Unmarshal(data, &payload))

	assert.Equal(t, "✏️ **Work item updated: Fix camera**", payload.Content)
	require.Len(t, payload.Embeds, 1)

	embed := payload.Embeds[0]
	assert.Equal(t, "Fix camera", embed.Title)
	assert.Equal(t, "The camera clips through walls.", embed.Description)
	assert.Equal(t, "https://app.hacknplan.com/p/42/kanban?categoryId=0&boardId=3", embed.URL)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Type", embed.Fields[0].Name)
	assert.Equal(t, "Bug", embed.Fields[0].Value)
	assert.True(t, embed.Fields[0].Inline)
}

func TestFormatDiscord_EmptyURLOmitted(t *testing.T) {
	msg := testMessage()
	msg.Embed.URL = ""

	data, err := FormatDiscord(msg)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	embeds := raw["embeds"].([]any)
	embed := embeds[0].(map[string]any)

	_, present := embed["url"]
	assert.False(t, present, "empty url should be omitted from the wire payload")
}

func TestFormatDiscord_NoFields(t *testing.T) {
	msg := types.NotificationMessage{
		Content: "🔔 **Event**",
		Embed:   types.Embed{Title: "Event", Description: "No description."},
	}

	data, err := FormatDiscord(msg)
	require.NoError(t, err)

	var payload DiscordPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Empty(t, payload.Embeds[0].Fields)
}

// --- ValidateResponse Tests ---

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       []byte
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "204 no content",
			statusCode: 204,
			body:       nil,
			wantErr:    false,
		},
		{
			name:       "200 ok",
			statusCode: 200,
			body:       []byte("{}"),
			wantErr:    false,
		},
		{
			name:       "400 with discord message",
			statusCode: 400,
			body:       []byte(`{"message": "Cannot send an empty message", "code": 50006}`),
			wantErr:    true,
			errMsg:     "Cannot send an empty message",
		},
		{
			name:       "429 rate limited",
			statusCode: 429,
			body:       []byte(`{"message": "You are being rate limited.", "retry_after": 1.2}`),
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "500 non-json body",
			statusCode: 500,
			body:       []byte("upstream proxy error"),
			wantErr:    true,
			errMsg:     "unexpected status 500",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateResponse(tc.statusCode, tc.body)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestTruncateBody_Long(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	got := truncateBody(long)

	assert.Len(t, got, 203)
	assert.Contains(t, got, "...")
}
