// Package i18n renders user-facing text for error codes and notices.
package i18n

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is a catalog key: an error code or a notice key.
type Code = string

// BaseLocale is the fallback locale.
const BaseLocale = "en-US"

// Catalog maps keys to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
	printer  *message.Printer
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}

	supported = []language.Tag{language.AmericanEnglish, language.BrazilianPortuguese}
	matcher   = language.NewMatcher(supported)
)

func init() {
	RegisterCatalog(BaseLocale, NewCatalog(BaseLocale, enUS))
	RegisterCatalog("pt-BR", NewCatalog("pt-BR", ptBR))
}

// GetCatalog returns the closest catalog for locale, falling back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}
	tag, err := language.Parse(requested)
	if err == nil {
		if _, idx, confidence := matcher.Match(tag); confidence != language.No {
			if c, ok := lookupCatalog(supported[idx].String()); ok {
				return c
			}
		}
	}
	c, _ := lookupCatalog(BaseLocale)
	return c
}

// FromAcceptLanguage picks the supported locale that best matches an
// Accept-Language header value.
func FromAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return supported[idx].String()
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. Unknown codes render
// as the code itself; templates that fail render as their raw text.
//
// Templates may call amount (two decimals) and cost (four decimals) on
// numeric metadata values; numbers follow the catalog's locale.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	t, err := template.New("msg").Funcs(template.FuncMap{
		"amount": c.number(2),
		"cost":   c.number(4),
	}).Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// Amount formats a balance with two decimals in the catalog's locale.
func (c *Catalog) Amount(v float64) string {
	return c.printer.Sprintf("%.2f", v)
}

func (c *Catalog) number(decimals int) func(string) string {
	return func(raw string) string {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return raw
		}
		return c.printer.Sprintf("%."+strconv.Itoa(decimals)+"f", v)
	}
}

// RegisterCatalog registers a catalog for the given locale.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog creates a catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
		printer:  message.NewPrinter(tag),
	}
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}
