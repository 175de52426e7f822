package usecases

import "sync"

// ContentCache maps file names to the verbatim content last read for them.
// Entries are never evicted; re-reading a name overwrites its content in place.
type ContentCache struct {
	mu       sync.RWMutex
	contents map[string]string
	order    []string
}

// NewContentCache creates an empty cache.
func NewContentCache() *ContentCache {
	return &ContentCache{contents: make(map[string]string)}
}

// Put stores content under name.
func (c *ContentCache) Put(name, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contents[name]; !ok {
		c.order = append(c.order, name)
	}
	c.contents[name] = content
}

// FullContent returns the cached content for name.
func (c *ContentCache) FullContent(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	content, ok := c.contents[name]
	return content, ok
}

// FileNames returns cached names in first-read order.
func (c *ContentCache) FileNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of cached files.
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
