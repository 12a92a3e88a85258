// Package links renders the configured deep-link templates for notification
// embeds. Templates use the source product's documented {PlaceholderName}
// convention (e.g. "https://app.hacknplan.com/p/{ProjectId}/gamemodel?nodeId={DesignElementId}").
//
// Rendering is fail-soft by contract: an unset template or an unresolvable
// placeholder yields no link at all, never an error and never a
// partially-rendered URL.
package links

import (
	"strings"

	"planrelay/internal/payload"
	"planrelay/internal/resolve"
)

// Composer renders the design-element and board link templates. It is
// immutable and safe for concurrent use.
type Composer struct {
	designTemplate string
	boardTemplate  string
}

// NewComposer creates a Composer. Either template may be empty, in which case
// the corresponding link is never produced.
func NewComposer(designTemplate, boardTemplate string) *Composer {
	return &Composer{
		designTemplate: designTemplate,
		boardTemplate:  boardTemplate,
	}
}

// DesignURL renders the design-element link against the payload's top-level
// scalars. When suppress is set (the element was deleted or archived) the link
// is forced empty regardless of a successful render: the linked page returns
// not-found once the element is gone.
func (c *Composer) DesignURL(p payload.Tree, suppress bool) string {
	if suppress || c.designTemplate == "" {
		return ""
	}

	url, ok := expand(c.designTemplate, func(name string) (string, bool) {
		return topLevelScalar(p, name)
	})
	if !ok {
		return ""
	}
	return url
}

// BoardURL renders the board link for a work item. Resolved identifiers take
// priority over raw payload keys so that the nested Board.BoardId and
// Category.CategoryId shapes reach the template; a missing category defaults
// to "0", which the board UI treats as "all categories".
//
// The board outlives its items, so this link is never suppressed: it remains
// valid after the item it announced is deleted.
func (c *Composer) BoardURL(p payload.Tree, f resolve.Fields) string {
	if c.boardTemplate == "" {
		return ""
	}

	overlay := map[string]string{
		"ProjectId":  f.ProjectID,
		"WorkItemId": f.WorkItemID,
		"BoardId":    f.BoardID,
		"CategoryId": f.CategoryID,
	}
	if overlay["CategoryId"] == "" {
		overlay["CategoryId"] = "0"
	}

	url, ok := expand(c.boardTemplate, func(name string) (string, bool) {
		if v, present := overlay[name]; present && v != "" {
			return v, true
		}
		return topLevelScalar(p, name)
	})
	if !ok {
		return ""
	}
	return url
}

// expand substitutes every {Name} in tmpl using lookup. Any placeholder the
// lookup cannot resolve, or a malformed template (unterminated brace, empty
// name), aborts the whole render.
func expand(tmpl string, lookup func(string) (string, bool)) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(tmpl); {
		if tmpl[i] != '{' {
			b.WriteByte(tmpl[i])
			i++
			continue
		}

		end := strings.IndexByte(tmpl[i:], '}')
		if end < 0 {
			return "", false
		}
		name := tmpl[i+1 : i+end]
		if name == "" {
			return "", false
		}

		value, ok := lookup(name)
		if !ok {
			return "", false
		}
		b.WriteString(value)
		i += end + 1
	}
	return b.String(), true
}

// topLevelScalar resolves a placeholder against the payload's top-level keys.
// Containers do not qualify: substituting a serialized map into a URL is never
// what the template author intended.
func topLevelScalar(p payload.Tree, name string) (string, bool) {
	s, ok := payload.Stringify(payload.Get(p, name))
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
