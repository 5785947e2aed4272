package dictionary

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of recent extract/locate results kept
// per CachedSection.
const DefaultCacheSize = 4096

// CachedSection wraps a PFC section with a locking (concurrency-safe)
// golang-lru cache memoizing
// recent Extract and Locate results. Correctness relies on the wrapped
// PFC being immutable once built.
type CachedSection struct {
	pfc        *PFC
	extractLRU *lru.Cache[uint64, string]
	locateLRU  *lru.Cache[string, uint64]
}

// NewCachedSection wraps pfc with an LRU of the given size (DefaultCacheSize
// if size <= 0).
func NewCachedSection(pfc *PFC, size int) *CachedSection {
	if size <= 0 {
		size = DefaultCacheSize
	}
	extractLRU, _ := lru.New[uint64, string](size)
	locateLRU, _ := lru.New[string, uint64](size)
	return &CachedSection{pfc: pfc, extractLRU: extractLRU, locateLRU: locateLRU}
}

// NumStrings returns the number of terms stored in the underlying section.
func (c *CachedSection) NumStrings() int { return c.pfc.NumStrings() }

// Extract returns the term at 1-based index id, consulting the cache first.
func (c *CachedSection) Extract(id uint64) (string, error) {
	if term, ok := c.extractLRU.Get(id); ok {
		return term, nil
	}
	term, err := c.pfc.Extract(id)
	if err != nil {
		return "", err
	}
	c.extractLRU.Add(id, term)
	return term, nil
}

// Locate returns the 1-based index of term, consulting the cache first.
func (c *CachedSection) Locate(term string) (uint64, error) {
	if id, ok := c.locateLRU.Get(term); ok {
		return id, nil
	}
	id, err := c.pfc.Locate(term)
	if err != nil {
		return 0, err
	}
	c.locateLRU.Add(term, id)
	return id, nil
}

// FillSuggestions delegates to the underlying section without caching;
// autocompletion results are rarely repeated verbatim.
func (c *CachedSection) FillSuggestions(prefix string, max int, out []string) []string {
	return c.pfc.FillSuggestions(prefix, max, out)
}
