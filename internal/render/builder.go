package render

import (
	"fmt"

	"planrelay/internal/event"
	"planrelay/internal/resolve"
	"planrelay/internal/types"
)

// fieldNames holds the localized embed field labels. Identifier fields keep
// the source system's key names; they read as proper nouns in both locales.
type fieldNames struct {
	typeName string
	stage    string
	actor    string
}

var fieldNameTable = map[types.Locale]fieldNames{
	types.LocaleSpanish: {typeName: "Tipo", stage: "Etapa", actor: "Responsable"},
	types.LocaleEnglish: {typeName: "Type", stage: "Stage", actor: "Actor"},
}

// Builder assembles the final NotificationMessage from the headline and the
// resolved fields. It is immutable and safe for concurrent use.
type Builder struct {
	locale types.Locale
}

// NewBuilder creates a Builder for the given locale.
func NewBuilder(locale types.Locale) *Builder {
	return &Builder{locale: locale}
}

// Build assembles the embed. The field order is fixed: type name, project id,
// kind-specific identifiers, parent name, stage, actor. A field is included
// only when its value resolved; omission is the policy for absent values.
func (b *Builder) Build(desc event.Descriptor, f resolve.Fields, headline, url string) types.NotificationMessage {
	names := fieldNameTable[b.locale]
	if names == (fieldNames{}) {
		names = fieldNameTable[types.LocaleEnglish]
	}

	embed := types.Embed{
		Title:       f.Title,
		Description: f.Description,
		URL:         url,
	}
	if embed.Title == "" {
		embed.Title = b.genericTitle(desc.Kind)
	}

	add := func(name, value string) {
		if value != "" {
			embed.Fields = append(embed.Fields, types.EmbedField{Name: name, Value: value, Inline: true})
		}
	}

	add(names.typeName, f.TypeName)
	add("ProjectId", f.ProjectID)
	if desc.Kind == event.KindWorkItem {
		add("WorkItemId", f.WorkItemID)
		add("BoardId", f.BoardID)
		add("CategoryId", f.CategoryID)
	} else {
		add("DesignElementId", f.DesignElementID)
	}
	add("Parent", f.ParentName)
	if f.Stage != nil {
		add(names.stage, fmt.Sprintf("%s %s (%d)", f.Stage.Emoji, f.Stage.Label, f.Stage.ID))
	}
	add(names.actor, f.Actor)

	return types.NotificationMessage{
		Content: headline,
		Embed:   embed,
	}
}

// genericTitle is the embed title fallback when the payload carried no name.
func (b *Builder) genericTitle(kind string) string {
	if n, ok := nounTable[b.locale][kind]; ok {
		return n
	}
	return genericNoun[b.locale]
}
