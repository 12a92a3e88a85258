// Package event parses the source system's event-type strings into a canonical
// (entity kind, lifecycle action) descriptor. The event type normally arrives
// in the X-HacknPlan-Event header as "<Kind>.<Action>", but historical
// revisions have used "_" and "-" separators and a long tail of action
// synonyms, all of which normalize to the same canonical actions.
package event

import (
	"net/http"
	"strings"

	"planrelay/internal/payload"
)

// Action is a normalized lifecycle verb.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"

	// ActionUnknown covers unmapped or absent action text. The original
	// lowercased text is preserved on the Descriptor for display.
	ActionUnknown Action = "unknown"
)

// Known entity kinds. Any other kind string flows through the pipeline as-is
// and renders with generic wording.
const (
	KindDesignElement = "designelement"
	KindWorkItem      = "workitem"

	// KindGeneric is assigned by the best-effort classifier when no
	// identifier key reveals the entity kind.
	KindGeneric = "event"
)

// Descriptor identifies what an incoming event is about.
type Descriptor struct {
	// Kind is the lowercased entity name ("designelement", "workitem", ...),
	// or "" when the event type had no kind segment.
	Kind string

	// Action is the canonical lifecycle verb.
	Action Action

	// RawAction is the lowercased original action text. Meaningful only when
	// Action is ActionUnknown; "" means the event type carried no action.
	RawAction string

	// Raw is the trimmed original event-type string, kept for display in
	// headlines for unmapped actions. Empty for inferred descriptors.
	Raw string
}

// actionSynonyms maps every historical action spelling to its canonical form.
// "archived" counts as a logical delete: the linked page is gone either way.
var actionSynonyms = map[string]Action{
	"created":  ActionCreated,
	"create":   ActionCreated,
	"added":    ActionCreated,
	"add":      ActionCreated,
	"new":      ActionCreated,
	"updated":  ActionUpdated,
	"update":   ActionUpdated,
	"changed":  ActionUpdated,
	"change":   ActionUpdated,
	"modified": ActionUpdated,
	"modify":   ActionUpdated,
	"edit":     ActionUpdated,
	"edited":   ActionUpdated,
	"deleted":  ActionDeleted,
	"delete":   ActionDeleted,
	"removed":  ActionDeleted,
	"remove":   ActionDeleted,
	"archived": ActionDeleted,
	"archive":  ActionDeleted,
}

// separators are scanned in fixed order; the first one present anywhere in
// the event type wins, even when a later separator would split more sensibly.
// This matches the source system's observed behavior and keeps classification
// deterministic.
var separators = []string{".", "_", "-"}

// Split parses an event-type string into a Descriptor.
//
//	Split("DesignElement.Created") -> {Kind: "designelement", Action: created}
//	Split("WorkItem_Removed")      -> {Kind: "workitem", Action: deleted}
//	Split("NoSeparatorHere")       -> {Kind: "noseparatorhere", Action: unknown, RawAction: ""}
func Split(eventType string) Descriptor {
	et := strings.TrimSpace(eventType)

	for _, sep := range separators {
		idx := strings.Index(et, sep)
		if idx < 0 {
			continue
		}
		action, rawAction := NormalizeAction(et[idx+len(sep):])
		return Descriptor{
			Kind:      strings.ToLower(et[:idx]),
			Action:    action,
			RawAction: rawAction,
			Raw:       et,
		}
	}

	return Descriptor{
		Kind:   strings.ToLower(et),
		Action: ActionUnknown,
		Raw:    et,
	}
}

// NormalizeAction lowercases the raw action text and maps it through the
// synonym table. Unmapped non-empty actions return ActionUnknown together with
// the lowercased text; empty input returns ActionUnknown with "".
func NormalizeAction(raw string) (Action, string) {
	lowered := strings.ToLower(raw)
	if canonical, ok := actionSynonyms[lowered]; ok {
		return canonical, lowered
	}
	return ActionUnknown, lowered
}

// Infer is the best-effort classifier used only when the transport supplied no
// event-type string at all. It is advisory: the guesses below are conservative
// and deliberately default to "updated".
//
//   - A delete-style HTTP verb means a delete.
//   - A true-valued archival or deletion flag in the payload means a delete.
//   - Everything else is treated as an update. A creation timestamp without a
//     previous-value field is weak evidence of a create, but that signal is
//     unverified against real event samples and is not acted on.
//
// The entity kind is guessed from which identifier key is present.
func Infer(method string, p payload.Tree) Descriptor {
	kind := KindGeneric
	switch {
	case payload.Get(p, "DesignElementId") != nil:
		kind = KindDesignElement
	case payload.Get(p, "WorkItemId") != nil, payload.Get(p, "TaskId") != nil:
		kind = KindWorkItem
	}

	action := ActionUpdated
	if strings.EqualFold(method, http.MethodDelete) {
		action = ActionDeleted
	} else if hasDeletionFlag(p) {
		action = ActionDeleted
	}

	return Descriptor{Kind: kind, Action: action}
}

// hasDeletionFlag reports whether the payload carries a truthy archival or
// deletion marker under any of its historical spellings.
func hasDeletionFlag(p payload.Tree) bool {
	for _, key := range []string{"Archived", "IsArchived", "Deleted", "IsDeleted"} {
		if payload.Truthy(payload.Get(p, key)) {
			return true
		}
	}
	return false
}
