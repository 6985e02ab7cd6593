package scanner

// TextCache interns the text of identifier-like tokens and decoded string
// literals. It is keyed by the raw source slice, so repeated occurrences of
// the same identifier or literal share one string. A cache belongs to a
// single parse; it is not safe for concurrent use.
type TextCache struct {
	m map[string]string
}

// NewTextCache returns an empty cache.
func NewTextCache() *TextCache {
	return &TextCache{m: make(map[string]string)}
}

// Lookup returns the interned text for raw, if present.
func (c *TextCache) Lookup(raw string) (string, bool) {
	s, ok := c.m[raw]
	return s, ok
}

// Store records text as the interned form of raw and returns it.
func (c *TextCache) Store(raw, text string) string {
	c.m[raw] = text
	return text
}

// Intern returns the interned copy of raw, storing raw itself on first use.
func (c *TextCache) Intern(raw string) string {
	if s, ok := c.m[raw]; ok {
		return s
	}
	c.m[raw] = raw
	return raw
}

// Len reports the number of distinct entries.
func (c *TextCache) Len() int {
	return len(c.m)
}
