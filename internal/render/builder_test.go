package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planrelay/internal/event"
	"planrelay/internal/resolve"
	"planrelay/internal/types"
)

func fieldNamesOf(embed types.Embed) []string {
	names := make([]string, len(embed.Fields))
	for i, f := range embed.Fields {
		names[i] = f.Name
	}
	return names
}

// --- Build Tests ---

func TestBuild_WorkItemFieldOrder(t *testing.T) {
	b := NewBuilder(types.LocaleEnglish)
	desc := event.Descriptor{Kind: event.KindWorkItem, Action: event.ActionUpdated}
	f := resolve.Fields{
		Title:       "Fix camera",
		Description: "The camera clips through walls.",
		TypeName:    "Bug",
		ProjectID:   "42",
		WorkItemID:  "77",
		BoardID:     "3",
		CategoryID:  "9",
		ParentName:  "Camera epic",
		Stage:       &resolve.StageInfo{ID: 2, Label: "In progress", Emoji: "⏳"},
		Actor:       "Alice",
	}

	msg := b.Build(desc, f, "headline", "https://example.com/board")

	assert.Equal(t, "headline", msg.Content)
	assert.Equal(t, "Fix camera", msg.Embed.Title)
	assert.Equal(t, "The camera clips through walls.", msg.Embed.Description)
	assert.Equal(t, "https://example.com/board", msg.Embed.URL)

	require.Equal(t, []string{
		"Type", "ProjectId", "WorkItemId", "BoardId", "CategoryId", "Parent", "Stage", "Actor",
	}, fieldNamesOf(msg.Embed))

	assert.Equal(t, "⏳ In progress (2)", msg.Embed.Fields[6].Value)
	for _, field := range msg.Embed.Fields {
		assert.True(t, field.Inline)
	}
}

func TestBuild_DesignElementFieldOrder(t *testing.T) {
	b := NewBuilder(types.LocaleEnglish)
	desc := event.Descriptor{Kind: event.KindDesignElement, Action: event.ActionCreated}
	f := resolve.Fields{
		Title:           "Boss Fight",
		Description:     "Final encounter.",
		TypeName:        "Mechanic",
		ProjectID:       "42",
		DesignElementID: "501",
		Actor:           "Bob",
	}

	msg := b.Build(desc, f, "headline", "")

	assert.Equal(t, []string{"Type", "ProjectId", "DesignElementId", "Actor"}, fieldNamesOf(msg.Embed))
	assert.Equal(t, "", msg.Embed.URL)
}

func TestBuild_AbsentFieldsOmitted(t *testing.T) {
	b := NewBuilder(types.LocaleEnglish)
	desc := event.Descriptor{Kind: event.KindWorkItem, Action: event.ActionUpdated}
	f := resolve.Fields{
		Title:       "Bare item",
		Description: "No description.",
	}

	msg := b.Build(desc, f, "headline", "")

	assert.Empty(t, msg.Embed.Fields)
}

func TestBuild_TitleFallsBackToKindNoun(t *testing.T) {
	b := NewBuilder(types.LocaleEnglish)

	tests := []struct {
		name string
		kind string
		want string
	}{
		{name: "work item", kind: event.KindWorkItem, want: "Work item"},
		{name: "design element", kind: event.KindDesignElement, want: "Design element"},
		{name: "unknown kind", kind: "milestone", want: "Event"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := b.Build(event.Descriptor{Kind: tc.kind}, resolve.Fields{Description: "x"}, "h", "")
			assert.Equal(t, tc.want, msg.Embed.Title)
		})
	}
}

func TestBuild_SpanishFieldLabels(t *testing.T) {
	b := NewBuilder(types.LocaleSpanish)
	desc := event.Descriptor{Kind: event.KindWorkItem, Action: event.ActionUpdated}
	f := resolve.Fields{
		Title:       "Tarea",
		Description: "Sin descripción.",
		TypeName:    "Bug",
		Stage:       &resolve.StageInfo{ID: 4, Label: "Completado", Emoji: "✅"},
		Actor:       "Alicia",
	}

	msg := b.Build(desc, f, "headline", "")

	assert.Equal(t, []string{"Tipo", "Etapa", "Responsable"}, fieldNamesOf(msg.Embed))
	assert.Equal(t, "✅ Completado (4)", msg.Embed.Fields[1].Value)
}

func TestBuild_UnknownLocaleUsesEnglishLabels(t *testing.T) {
	b := NewBuilder(types.Locale("fr"))
	desc := event.Descriptor{Kind: event.KindWorkItem}
	f := resolve.Fields{Title: "T", Description: "D", TypeName: "Bug"}

	msg := b.Build(desc, f, "h", "")

	assert.Equal(t, []string{"Type"}, fieldNamesOf(msg.Embed))
}
