package resolve

import (
	"planrelay/internal/event"
	"planrelay/internal/payload"
)

// actorPaths is the ordered path table for the acting user's display name.
// The nested User.User shape is what current payloads actually carry; the
// flatter variants cover older revisions.
var actorPaths = []payload.Path{
	{"User", "User", "Name"},
	{"User", "User", "Username"},
	{"User", "Name"},
	{"User", "Username"},
	{"UpdatedBy", "Name"},
	{"ChangedBy", "Name"},
	{"Author", "Name"},
}

// workItemActorPaths extends the common table with the first assigned user,
// which work-item payloads carry instead of a top-level User on some events.
var workItemActorPaths = append(append([]payload.Path{}, actorPaths...),
	payload.Path{"AssignedUsers", 0, "User", "Name"},
	payload.Path{"AssignedUsers", 0, "User", "Username"},
)

// Actor extracts the acting user's display name, first non-empty string wins.
// Returns "" when no path resolves; the actor is then omitted downstream,
// never fabricated.
func Actor(kind string, p payload.Tree) string {
	paths := actorPaths
	if kind == event.KindWorkItem {
		paths = workItemActorPaths
	}
	return pickString(p, paths)
}
