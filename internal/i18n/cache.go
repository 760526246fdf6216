package i18n

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSuperseded is returned when a translation finished after a newer
	// language change was issued; its result was discarded.
	ErrSuperseded = errors.New("translation superseded by a newer language change")
	// ErrNoTranslator is returned when a non-default language is requested
	// without a translation service.
	ErrNoTranslator = errors.New("no translator configured")
)

// Translator turns the base dictionary into another language. The result may
// omit keys.
type Translator interface {
	Translate(ctx context.Context, lang string, source map[string]string) (map[string]string, error)
}

// Cache holds the active language and its overlay dictionary. Every language
// is fetched at most once per Cache; later switches reuse the stored overlay.
type Cache struct {
	mu         sync.Mutex
	translator Translator
	def        string
	active     string
	overlay    map[string]string
	fetched    map[string]map[string]string
	seq        uint64
	inflight   int
}

// NewCache returns a cache whose active language is def.
func NewCache(def string, translator Translator) *Cache {
	def = Normalize(def)
	return &Cache{
		translator: translator,
		def:        def,
		active:     def,
		fetched:    map[string]map[string]string{},
	}
}

// Default returns the default language tag.
func (c *Cache) Default() string {
	return c.def
}

// Active returns the language currently applied.
func (c *Cache) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Translating reports whether any translation request is outstanding.
func (c *Cache) Translating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Overlay returns a copy of the active overlay dictionary.
func (c *Cache) Overlay() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyDict(c.overlay)
}

// Lookup resolves key for the active language.
func (c *Cache) Lookup(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Lookup(c.overlay, key)
}

// Format resolves key and expands its placeholders.
func (c *Cache) Format(key string, vars map[string]string) string {
	return Expand(c.Lookup(key), vars)
}

// Reset switches back to the default language and discards pending responses.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.active = c.def
	c.overlay = nil
}

// SetLanguage switches the active language. The default language and
// previously fetched languages apply synchronously. Otherwise one translation
// request is issued; its result is applied only if no newer SetLanguage or
// Reset happened meanwhile. On failure the previous language stays active.
func (c *Cache) SetLanguage(ctx context.Context, tag string) error {
	tag = Normalize(tag)
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if tag == "" || tag == c.def {
		c.active = c.def
		c.overlay = nil
		c.mu.Unlock()
		return nil
	}
	if dict, ok := c.fetched[tag]; ok {
		c.active = tag
		c.overlay = dict
		c.mu.Unlock()
		return nil
	}
	if c.translator == nil {
		c.mu.Unlock()
		return ErrNoTranslator
	}
	c.inflight++
	c.mu.Unlock()

	dict, err := c.translator.Translate(ctx, tag, copyDict(Base))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		if seq != c.seq {
			return ErrSuperseded
		}
		return fmt.Errorf("failed to translate UI to %s: %w", tag, err)
	}
	clean := sanitize(dict)
	c.fetched[tag] = clean
	if seq != c.seq {
		return ErrSuperseded
	}
	c.active = tag
	c.overlay = clean
	return nil
}

// sanitize keeps only known, non-empty keys.
func sanitize(dict map[string]string) map[string]string {
	out := make(map[string]string, len(dict))
	for k, v := range dict {
		if _, ok := Base[k]; !ok || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func copyDict(dict map[string]string) map[string]string {
	if dict == nil {
		return nil
	}
	out := make(map[string]string, len(dict))
	for k, v := range dict {
		out[k] = v
	}
	return out
}
