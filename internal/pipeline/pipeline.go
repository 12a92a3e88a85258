// Package pipeline ties the classifier, resolvers, link composer, and
// renderer into the single normalization function of the service:
//
//	(event type, payload, configuration) -> NotificationMessage
//
// The pipeline is a pure function of its inputs. It performs no I/O, holds no
// mutable state, and may be invoked from any number of goroutines; identical
// inputs produce byte-identical messages.
package pipeline

import (
	"strings"

	"planrelay/internal/event"
	"planrelay/internal/links"
	"planrelay/internal/payload"
	"planrelay/internal/render"
	"planrelay/internal/resolve"
	"planrelay/internal/types"
)

// Pipeline normalizes incoming events into notification messages. Construct
// once at startup; all contained components are immutable.
type Pipeline struct {
	resolver *resolve.Resolver
	links    *links.Composer
	renderer *render.Renderer
	builder  *render.Builder
}

// Options carries the notification-shaping subset of the service
// configuration.
type Options struct {
	Locale            types.Locale
	DesignURLTemplate string
	BoardURLTemplate  string
	MaxDescription    int
}

// New creates a Pipeline from immutable startup options.
func New(opts Options) *Pipeline {
	return &Pipeline{
		resolver: resolve.NewResolver(opts.Locale, opts.MaxDescription),
		links:    links.NewComposer(opts.DesignURLTemplate, opts.BoardURLTemplate),
		renderer: render.NewRenderer(opts.Locale),
		builder:  render.NewBuilder(opts.Locale),
	}
}

// Build normalizes one event. When eventType is empty the best-effort
// classifier infers kind and action from the HTTP method and payload flags;
// otherwise the event-type string is authoritative.
func (p *Pipeline) Build(eventType, method string, tree payload.Tree) types.NotificationMessage {
	var desc event.Descriptor
	if strings.TrimSpace(eventType) == "" {
		desc = event.Infer(method, tree)
	} else {
		desc = event.Split(eventType)
	}

	fields := p.resolver.Resolve(desc.Kind, tree)
	url := p.composeURL(desc, fields, tree)
	headline := p.renderer.Headline(desc, fields.TypeName, fields.Title, fields.Actor, fields.Stage)

	return p.builder.Build(desc, fields, headline, url)
}

// composeURL selects the embed link by kind. Work items always link to the
// persistent board, which survives item deletion; design elements link to the
// element page, suppressed once the element is deleted or archived because
// that page 404s.
func (p *Pipeline) composeURL(desc event.Descriptor, fields resolve.Fields, tree payload.Tree) string {
	if desc.Kind == event.KindWorkItem {
		return p.links.BoardURL(tree, fields)
	}

	suppress := desc.Kind == event.KindDesignElement &&
		(desc.Action == event.ActionDeleted || fields.Archived)
	return p.links.DesignURL(tree, suppress)
}
