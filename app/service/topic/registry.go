package topic

import (
	"hackerbot/app/service/locale"

	_ "embed"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var embeddedTopics []byte

type ID string

const (
	Home      ID = "home"
	General   ID = "general"
	Work      ID = "work"
	School    ID = "school"
	Questions ID = "questions"
	Hacking   ID = "hacking"
	Cheats    ID = "cheats"
)

// Topic is a conversation section. Label is a catalog key.
type Topic struct {
	ID    ID
	Label string
	Icon  string
}

type entry struct {
	ID     ID                       `yaml:"id" validate:"required"`
	Label  string                   `yaml:"label" validate:"required"`
	Icon   string                   `yaml:"icon"`
	Status map[locale.Locale]string `yaml:"status" validate:"required,min=1"`
}

type Registry struct {
	labels   *locale.Catalog
	statuses *locale.Catalog

	topics []Topic
	ids    []ID
}

func New(di *do.Injector) (*Registry, error) {
	return Load(embeddedTopics, do.MustInvoke[*locale.Catalog](di))
}

func Load(raw []byte, catalog *locale.Catalog) (*Registry, error) {
	var entries []entry

	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, oops.In("topic").Errorf("failed to parse topics: %w", err)
	}

	if len(entries) == 0 {
		return nil, oops.In("topic").Errorf("no topics defined")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	for _, e := range entries {
		if err := validate.Struct(e); err != nil {
			return nil, oops.In("topic").With("topic", e.ID).Errorf("failed to validate topic: %w", err)
		}
	}

	ids := pie.Map(entries, func(e entry) ID {
		return e.ID
	})
	if len(pie.Unique(ids)) != len(ids) {
		return nil, oops.In("topic").Errorf("duplicate topic ids: %v", ids)
	}

	texts := make(locale.Texts, len(entries))
	for _, e := range entries {
		texts[statusKey(e.ID)] = e.Status
	}

	statuses, err := catalog.WithTexts(texts)
	if err != nil {
		return nil, oops.In("topic").Errorf("invalid topic status texts: %w", err)
	}

	return &Registry{
		labels:   catalog,
		statuses: statuses,
		topics: pie.Map(entries, func(e entry) Topic {
			return Topic{ID: e.ID, Label: e.Label, Icon: e.Icon}
		}),
		ids: ids,
	}, nil
}

func statusKey(id ID) string {
	return "status." + string(id)
}

// List returns the topics in display order.
func (r *Registry) List() []Topic {
	return append([]Topic(nil), r.topics...)
}

func (r *Registry) Get(id ID) (Topic, bool) {
	idx := r.index(id)
	if idx < 0 {
		return Topic{}, false
	}

	return r.topics[idx], true
}

func (r *Registry) Parse(id string) (ID, bool) {
	if r.index(ID(id)) < 0 {
		return "", false
	}

	return ID(id), true
}

// StatusText returns the canned status line of a topic.
func (r *Registry) StatusText(id ID, loc locale.Locale) string {
	return r.statuses.Resolve(statusKey(id), loc)
}

func (r *Registry) Label(id ID, loc locale.Locale) string {
	t, ok := r.Get(id)
	if !ok {
		return r.labels.Resolve(string(id), loc)
	}

	return r.labels.Resolve(t.Label, loc)
}

func (r *Registry) Next(id ID) ID {
	return r.ids[(r.index(id)+1)%len(r.ids)]
}

func (r *Registry) Prev(id ID) ID {
	idx := r.index(id)
	if idx <= 0 {
		return r.ids[len(r.ids)-1]
	}

	return r.ids[idx-1]
}

func (r *Registry) index(id ID) int {
	return pie.FindFirstUsing(r.ids, func(candidate ID) bool {
		return candidate == id
	})
}
