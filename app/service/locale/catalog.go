package locale

import (
	"log/slog"
	"sync"

	_ "embed"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

type Locale string

const (
	EN Locale = "en"
	RU Locale = "ru"
	TT Locale = "tt"
	ES Locale = "es"
)

// Info describes a selectable locale.
type Info struct {
	Code Locale `yaml:"code" validate:"required"`
	Name string `yaml:"name" validate:"required"`
	Flag string `yaml:"flag"`
}

// Texts maps a text key to its per-locale strings.
type Texts map[string]map[Locale]string

type Data struct {
	Default Locale `yaml:"default" validate:"required"`
	Locales []Info `yaml:"locales" validate:"required,min=1,dive"`
	Texts   Texts  `yaml:"texts"`
}

// Catalog resolves text keys to display strings. It is immutable after
// construction and safe for concurrent reads.
type Catalog struct {
	defaultLocale Locale
	locales       []Info
	codes         []Locale
	texts         Texts

	reported sync.Map
}

func New(_ *do.Injector) (*Catalog, error) {
	return Load(embeddedCatalog)
}

// Load parses a YAML catalog document.
func Load(raw []byte) (*Catalog, error) {
	var data Data

	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, oops.In("locale").Errorf("failed to parse catalog: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(data); err != nil {
		return nil, oops.In("locale").Errorf("failed to validate catalog: %w", err)
	}

	return NewCatalog(data)
}

func NewCatalog(data Data) (*Catalog, error) {
	codes := pie.Map(data.Locales, func(info Info) Locale {
		return info.Code
	})

	if len(pie.Unique(codes)) != len(codes) {
		return nil, oops.In("locale").Errorf("duplicate locale codes: %v", codes)
	}

	if !pie.Contains(codes, data.Default) {
		return nil, oops.In("locale").With("default", data.Default).Errorf("default locale %q is not declared", data.Default)
	}

	for key, entries := range data.Texts {
		for code := range entries {
			if !pie.Contains(codes, code) {
				return nil, oops.In("locale").With("key", key).Errorf("text %q uses undeclared locale %q", key, code)
			}
		}
	}

	texts := make(Texts, len(data.Texts))
	for key, entries := range data.Texts {
		copied := make(map[Locale]string, len(entries))
		for code, text := range entries {
			copied[code] = text
		}
		texts[key] = copied
	}

	return &Catalog{
		defaultLocale: data.Default,
		locales:       append([]Info(nil), data.Locales...),
		codes:         codes,
		texts:         texts,
	}, nil
}

// WithTexts builds a catalog sharing this catalog's locales and default.
func (c *Catalog) WithTexts(texts Texts) (*Catalog, error) {
	return NewCatalog(Data{
		Default: c.defaultLocale,
		Locales: c.locales,
		Texts:   texts,
	})
}

// Resolve returns the text for key in locale. Unknown keys resolve to the
// key itself. A key without an entry for locale falls back to the default
// locale, and to the key when the default is missing too.
func (c *Catalog) Resolve(key string, locale Locale) string {
	entries, ok := c.texts[key]
	if !ok {
		return key
	}

	if text, ok := entries[locale]; ok {
		return text
	}

	c.reportMissing(key, locale)

	if text, ok := entries[c.defaultLocale]; ok {
		return text
	}

	return key
}

func (c *Catalog) reportMissing(key string, locale Locale) {
	if _, loaded := c.reported.LoadOrStore(key+"\x00"+string(locale), struct{}{}); loaded {
		return
	}

	slog.Warn("Missing locale entry",
		"kind", "missing_locale_entry",
		"key", key,
		"locale", locale,
		"fallback", c.defaultLocale,
	)
}

func (c *Catalog) Default() Locale {
	return c.defaultLocale
}

// Locales returns the declared locales in display order.
func (c *Catalog) Locales() []Info {
	return append([]Info(nil), c.locales...)
}

func (c *Catalog) Info(locale Locale) (Info, bool) {
	idx := pie.FindFirstUsing(c.locales, func(info Info) bool {
		return info.Code == locale
	})
	if idx < 0 {
		return Info{}, false
	}

	return c.locales[idx], true
}

func (c *Catalog) Parse(code string) (Locale, bool) {
	locale := Locale(code)
	if !pie.Contains(c.codes, locale) {
		return "", false
	}

	return locale, true
}

// Next returns the locale following the given one, wrapping around.
func (c *Catalog) Next(locale Locale) Locale {
	idx := pie.FindFirstUsing(c.codes, func(code Locale) bool {
		return code == locale
	})

	return c.codes[(idx+1)%len(c.codes)]
}
