package resolve

import (
	"planrelay/internal/payload"
	"planrelay/internal/types"
)

// StageInfo describes a work item's workflow position.
type StageInfo struct {
	ID    int
	Label string
	Emoji string
}

// stageEntry holds the per-locale labels for one stage id.
type stageEntry struct {
	en    string
	es    string
	emoji string
}

// stageTable maps the source system's numeric stage ids to display labels.
// The table is fixed: unknown ids produce no StageInfo, never an invented one.
var stageTable = map[int]stageEntry{
	1: {en: "Planned", es: "Planificado", emoji: "📝"},
	2: {en: "In progress", es: "En progreso", emoji: "⏳"},
	3: {en: "Testing", es: "En pruebas", emoji: "🧪"},
	4: {en: "Done", es: "Completado", emoji: "✅"},
}

// Stage looks up Stage.StageId in the fixed stage table. The id must be an
// integer; fractional numbers, strings, and absent values yield nil.
func Stage(p payload.Tree, locale types.Locale) *StageInfo {
	id, ok := payload.Int(payload.Get(p, "Stage", "StageId"))
	if !ok {
		return nil
	}

	entry, known := stageTable[id]
	if !known {
		return nil
	}

	label := entry.en
	if locale == types.LocaleSpanish {
		label = entry.es
	}
	return &StageInfo{ID: id, Label: label, Emoji: entry.emoji}
}
