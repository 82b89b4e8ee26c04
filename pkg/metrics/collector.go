package metrics

import (
	"sync"
)

// Collector collects POCSAG-Nexus metrics
type Collector struct {
	mu sync.RWMutex

	// Page metrics
	pagesEncoded  uint64
	pagesRejected uint64
	pagesBySource map[string]uint64

	// Encoder metrics
	codewordsEncoded uint64

	// Output metrics
	pcmBytesOut     uint64
	silenceBytesOut uint64

	// Queue metrics
	queueDepth int
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		pagesBySource: make(map[string]uint64),
	}
}

// PageEncoded records a page that was encoded and written to the output
func (c *Collector) PageEncoded(source string, words, pcmBytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pagesEncoded++
	c.pagesBySource[source]++
	c.codewordsEncoded += uint64(words)
	c.pcmBytesOut += uint64(pcmBytes)
}

// PageRejected records a page refused before encoding (bad line, ACL, full queue)
func (c *Collector) PageRejected(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pagesRejected++
}

// SilenceWritten records silence bytes written between transmissions
func (c *Collector) SilenceWritten(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.silenceBytesOut += uint64(bytes)
}

// SetQueueDepth records the current number of pages waiting in the queue
func (c *Collector) SetQueueDepth(depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queueDepth = depth
}

// Reset resets gauge metrics (useful for testing)
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.queueDepth = 0
	// Note: We don't reset total counters like pagesEncoded, pcmBytesOut, etc.
	// as those are cumulative
}

// Getters for metrics

// GetPagesEncoded returns total pages encoded
func (c *Collector) GetPagesEncoded() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pagesEncoded
}

// GetPagesRejected returns total pages rejected
func (c *Collector) GetPagesRejected() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pagesRejected
}

// GetCodewordsEncoded returns total codewords encoded
func (c *Collector) GetCodewordsEncoded() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.codewordsEncoded
}

// GetPCMBytes returns total PCM bytes written for pages
func (c *Collector) GetPCMBytes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pcmBytesOut
}

// GetSilenceBytes returns total silence bytes written between pages
func (c *Collector) GetSilenceBytes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.silenceBytesOut
}

// GetQueueDepth returns the current queue depth
func (c *Collector) GetQueueDepth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queueDepth
}

// GetPagesBySource returns a copy of the per-source page counts
func (c *Collector) GetPagesBySource() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]uint64, len(c.pagesBySource))
	for source, count := range c.pagesBySource {
		out[source] = count
	}
	return out
}
