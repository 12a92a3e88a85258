// Package render turns classified, resolved event data into the final
// notification: a localized, emoji-prefixed headline plus a structured embed.
package render

import (
	"fmt"

	"planrelay/internal/event"
	"planrelay/internal/resolve"
	"planrelay/internal/types"
)

// actionEmoji prefixes the headline. Unmapped actions get the bell.
var actionEmoji = map[event.Action]string{
	event.ActionCreated: "➕",
	event.ActionUpdated: "✏️",
	event.ActionDeleted: "🗑️",
}

const defaultEmoji = "🔔"

// nounTable maps entity kinds to localized display nouns, used when the
// payload carries no type name.
var nounTable = map[types.Locale]map[string]string{
	types.LocaleSpanish: {
		event.KindDesignElement: "Elemento de diseño",
		event.KindWorkItem:      "Tarea",
	},
	types.LocaleEnglish: {
		event.KindDesignElement: "Design element",
		event.KindWorkItem:      "Work item",
	},
}

// genericNoun is the fallback for kinds outside the noun table.
var genericNoun = map[types.Locale]string{
	types.LocaleSpanish: "Evento",
	types.LocaleEnglish: "Event",
}

// Renderer produces localized headline strings. It is immutable and safe for
// concurrent use.
type Renderer struct {
	locale types.Locale
}

// NewRenderer creates a Renderer for the given locale.
func NewRenderer(locale types.Locale) *Renderer {
	return &Renderer{locale: locale}
}

// Headline produces the plain-text notification line:
//
//	"{emoji} **{label}**"
//
// where label is the localized action phrase around the display noun, with the
// element name and actor appended when present. Work items additionally get a
// stage suffix carrying the stage's own emoji and label.
func (r *Renderer) Headline(desc event.Descriptor, typeName, elementName, actor string, stage *resolve.StageInfo) string {
	label := r.actionLabel(desc, r.noun(desc.Kind, typeName))

	if elementName != "" {
		label = fmt.Sprintf("%s: %s", label, elementName)
	}
	if actor != "" {
		if r.locale == types.LocaleSpanish {
			label = fmt.Sprintf("%s — por %s", label, actor)
		} else {
			label = fmt.Sprintf("%s — by %s", label, actor)
		}
	}

	emoji, ok := actionEmoji[desc.Action]
	if !ok {
		emoji = defaultEmoji
	}

	out := fmt.Sprintf("%s **%s**", emoji, label)
	if desc.Kind == event.KindWorkItem && stage != nil {
		out = fmt.Sprintf("%s — %s **%s** %s", out, stage.Emoji, stage.Label, stage.Emoji)
	}
	return out
}

// noun selects the display noun: the payload's type name when present,
// otherwise the locale+kind table, otherwise the generic noun.
func (r *Renderer) noun(kind, typeName string) string {
	if typeName != "" {
		return typeName
	}
	if n, ok := nounTable[r.locale][kind]; ok {
		return n
	}
	return genericNoun[r.locale]
}

// actionLabel renders the localized phrase for the canonical action. Unmapped
// actions keep the original event-type string visible so operators can see
// what the source actually sent.
func (r *Renderer) actionLabel(desc event.Descriptor, noun string) string {
	if r.locale == types.LocaleSpanish {
		switch desc.Action {
		case event.ActionCreated:
			return fmt.Sprintf("Nuevo %s", noun)
		case event.ActionUpdated:
			return fmt.Sprintf("%s actualizado", noun)
		case event.ActionDeleted:
			return fmt.Sprintf("%s eliminado", noun)
		}
		return fmt.Sprintf("%s (%s)", noun, orDefault(desc.Raw, genericNoun[types.LocaleSpanish]))
	}

	switch desc.Action {
	case event.ActionCreated:
		return fmt.Sprintf("New %s", noun)
	case event.ActionUpdated:
		return fmt.Sprintf("%s updated", noun)
	case event.ActionDeleted:
		return fmt.Sprintf("%s deleted", noun)
	}
	return fmt.Sprintf("%s (%s)", noun, orDefault(desc.Raw, genericNoun[types.LocaleEnglish]))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
