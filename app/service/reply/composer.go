package reply

import (
	"strings"

	"hackerbot/app/service/locale"
	"hackerbot/app/service/topic"

	"github.com/samber/do"
)

// MaxEchoLength is how many characters of the user's text are echoed back.
const MaxEchoLength = 120

const (
	keyLeadIn     = "reply.lead_in"
	keyMarker     = "reply.marker"
	keyProcessing = "reply.processing"
)

type Composer struct {
	catalog  *locale.Catalog
	registry *topic.Registry
}

func New(di *do.Injector) (*Composer, error) {
	return NewComposer(
		do.MustInvoke[*locale.Catalog](di),
		do.MustInvoke[*topic.Registry](di),
	), nil
}

func NewComposer(catalog *locale.Catalog, registry *topic.Registry) *Composer {
	return &Composer{
		catalog:  catalog,
		registry: registry,
	}
}

// Compose builds the assistant reply: the topic's canned status, followed by
// an acknowledgement block when userText is not blank.
func (c *Composer) Compose(id topic.ID, loc locale.Locale, userText string) string {
	base := c.registry.StatusText(id, loc)

	text := strings.TrimSpace(userText)
	if text == "" {
		return base
	}

	var builder strings.Builder

	builder.WriteString(base)
	builder.WriteString("\n\n")
	builder.WriteString(c.catalog.Resolve(keyLeadIn, loc))
	builder.WriteString(" ")
	builder.WriteString(Truncate(text, MaxEchoLength))
	builder.WriteString("\n")
	builder.WriteString(c.catalog.Resolve(keyMarker, loc))
	builder.WriteString(" ")
	builder.WriteString(c.catalog.Resolve(keyProcessing, loc))

	return builder.String()
}

// Truncate cuts text to at most limit runes.
func Truncate(text string, limit int) string {
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}

	return text
}
