// Package resolve extracts display fields from incoming event payloads. The
// source system has emitted two payload shapes for the same entities over
// time: a lower-camel "data.*" shape and a legacy capitalized shape. Instead
// of per-shape branches, every field has one ordered candidate table shared by
// both shapes; the first hit wins and the order is part of the contract.
package resolve

import (
	"planrelay/internal/event"
	"planrelay/internal/payload"
	"planrelay/internal/types"
)

// DefaultMaxDescription is the description length cap applied when the
// configuration does not specify one. Discord rejects embed descriptions over
// 4096 characters; notifications read better well below that.
const DefaultMaxDescription = 1000

// descriptionEllipsis terminates truncated descriptions.
const descriptionEllipsis = "…"

// Fields holds everything the renderer needs, already normalized to display
// strings. Empty string means "absent"; absent fields are omitted downstream,
// never fabricated. Description is the exception: it always has a value,
// falling back to a locale-specific placeholder.
type Fields struct {
	Title           string
	Description     string
	TypeName        string
	ProjectID       string
	DesignElementID string
	WorkItemID      string
	BoardID         string
	CategoryID      string
	ParentName      string
	Stage           *StageInfo
	Actor           string
	Archived        bool
}

// Candidate tables. Order is fixed and total: the new "data.*" shape is
// preferred, then the legacy capitalized keys, then lowercased legacy keys.
var (
	titlePaths = []payload.Path{
		{"data", "title"},
		{"data", "name"},
		{"Name"},
		{"Title"},
		{"name"},
		{"title"},
	}

	descriptionPaths = []payload.Path{
		{"data", "summary"},
		{"data", "description"},
		{"Description"},
		{"Summary"},
		{"description"},
		{"summary"},
	}

	typeNamePaths = []payload.Path{
		{"Type", "Name"},
		{"data", "type", "name"},
		{"TypeName"},
	}

	projectIDPaths = []payload.Path{
		{"ProjectId"},
		{"data", "projectId"},
	}

	designElementIDPaths = []payload.Path{
		{"DesignElementId"},
		{"data", "id"},
	}

	workItemIDPaths = []payload.Path{
		{"WorkItemId"},
		{"data", "id"},
	}

	boardIDPaths = []payload.Path{
		{"Board", "BoardId"},
		{"BoardId"},
	}

	categoryIDPaths = []payload.Path{
		{"Category", "CategoryId"},
		{"CategoryId"},
	}

	parentNamePaths = []payload.Path{
		{"Parent", "Name"},
	}

	archivedKeys = []string{"Archived", "IsArchived"}
)

// descriptionPlaceholder is used when no shape yields a description.
var descriptionPlaceholder = map[types.Locale]string{
	types.LocaleSpanish: "Sin descripción.",
	types.LocaleEnglish: "No description.",
}

// Resolver extracts Fields from payload trees. It is immutable and safe for
// concurrent use.
type Resolver struct {
	locale         types.Locale
	maxDescription int
}

// NewResolver creates a Resolver for the given locale and description cap.
// A non-positive cap falls back to DefaultMaxDescription.
func NewResolver(locale types.Locale, maxDescription int) *Resolver {
	if maxDescription <= 0 {
		maxDescription = DefaultMaxDescription
	}
	return &Resolver{locale: locale, maxDescription: maxDescription}
}

// Resolve extracts all display fields for the given entity kind. Work-item
// specific fields (board, category, stage, work-item id) are resolved only for
// work items; design-element ids only for everything else. Missing fields
// degrade silently to their documented defaults.
func (r *Resolver) Resolve(kind string, p payload.Tree) Fields {
	f := Fields{
		Title:      pickString(p, titlePaths),
		TypeName:   pickString(p, typeNamePaths),
		ProjectID:  pickScalar(p, projectIDPaths),
		ParentName: pickString(p, parentNamePaths),
		Archived:   archived(p),
		Actor:      Actor(kind, p),
	}

	if kind == event.KindWorkItem {
		f.WorkItemID = pickScalar(p, workItemIDPaths)
		f.BoardID = pickScalar(p, boardIDPaths)
		f.CategoryID = pickScalar(p, categoryIDPaths)
		f.Stage = Stage(p, r.locale)
	} else {
		f.DesignElementID = pickScalar(p, designElementIDPaths)
	}

	f.Description = r.description(p)
	return f
}

// description resolves the description chain, applies the locale placeholder
// when every candidate fails, and truncates to the configured maximum.
func (r *Resolver) description(p payload.Tree) string {
	desc := pickString(p, descriptionPaths)
	if desc == "" {
		desc = descriptionPlaceholder[r.locale]
		if desc == "" {
			desc = descriptionPlaceholder[types.LocaleEnglish]
		}
	}
	return truncate(desc, r.maxDescription)
}

// truncate caps s at max characters (code points), appending a single ellipsis
// marker when the limit was exceeded. A string exactly at the limit is
// unchanged.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + descriptionEllipsis
}

// archived reports whether any recognized archival flag is truthy.
func archived(p payload.Tree) bool {
	for _, key := range archivedKeys {
		if payload.Truthy(payload.Get(p, key)) {
			return true
		}
	}
	return false
}

// pickString gathers the values at each candidate path and applies the
// first-non-empty-string rule.
func pickString(p payload.Tree, paths []payload.Path) string {
	values := make([]any, 0, len(paths))
	for _, path := range paths {
		values = append(values, payload.Get(p, path...))
	}
	return payload.PickString(values...)
}

// pickScalar returns the first candidate that stringifies to a non-empty
// scalar. Identifiers arrive both as JSON numbers and as strings depending on
// the payload shape.
func pickScalar(p payload.Tree, paths []payload.Path) string {
	for _, path := range paths {
		if s, ok := payload.Stringify(payload.Get(p, path...)); ok && s != "" {
			return s
		}
	}
	return ""
}
