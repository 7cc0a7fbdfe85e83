package ai

import "sync"

// ExtractionCache holds scan results between ingestion phases, keyed
// by the menu id assigned at scan time. Section row ids are recorded
// after the save-sections phase so dish batches can attach to them.
type ExtractionCache struct {
	mu      sync.Mutex
	entries map[string]*CachedExtraction
}

type CachedExtraction struct {
	Menu *ExtractedMenu

	// SectionIDs[i] is the stored row id of Menu.Sections[i], filled
	// in by the save-sections phase.
	SectionIDs []string
}

func NewExtractionCache() *ExtractionCache {
	return &ExtractionCache{
		entries: make(map[string]*CachedExtraction),
	}
}

func (c *ExtractionCache) Put(menuID string, menu *ExtractedMenu) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[menuID] = &CachedExtraction{Menu: menu}
}

func (c *ExtractionCache) Get(menuID string) (*CachedExtraction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[menuID]
	return entry, ok
}

func (c *ExtractionCache) SetSectionIDs(menuID string, ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[menuID]; ok {
		entry.SectionIDs = ids
	}
}

// Drop removes a finished scan from the cache.
func (c *ExtractionCache) Drop(menuID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, menuID)
}
