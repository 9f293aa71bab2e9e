package wptl

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingCache records lookups and how many ran at the same time.
type countingCache struct {
	mu       sync.Mutex
	data     map[string]string
	delay    time.Duration
	lookups  atomic.Int64
	inFlight atomic.Int64
	peak     atomic.Int64
}

func newCountingCache(delay time.Duration) *countingCache {
	return &countingCache{data: make(map[string]string), delay: delay}
}

func (c *countingCache) Get(key string) (string, bool) {
	c.lookups.Add(1)
	n := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(c.delay)

	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *countingCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func TestParallelCacheLookup_HitsAndMisses(t *testing.T) {
	c := newCountingCache(0)
	c.Set(CacheKey("h-about", "es", "gemini-2.0-flash"), "Sobre nosotros")
	c.Set(CacheKey("h-contact", "es", "gemini-2.0-flash"), "Contacto")
	c.Set(CacheKey("h-news", "es", "gpt-4o-mini"), "Noticias")

	segments := []TextSegment{
		{Hash: "h-news", Text: "News"},
		{Hash: "h-about", Text: "About us"},
		{Hash: "h-team", Text: "Our team"},
		{Hash: "h-contact", Text: "Contact"},
	}

	hits, misses := ParallelCacheLookup(c, segments, "es", "gemini-2.0-flash")

	if len(hits) != 2 || hits["h-about"] != "Sobre nosotros" || hits["h-contact"] != "Contacto" {
		t.Errorf("hits = %v", hits)
	}
	// A hit under another model does not count
	if len(misses) != 2 || misses[0].Hash != "h-news" || misses[1].Hash != "h-team" {
		t.Errorf("misses = %+v, want h-news then h-team", misses)
	}
}

func TestParallelCacheLookup_OneLookupPerHash(t *testing.T) {
	c := newCountingCache(0)
	segments := []TextSegment{
		{Hash: "h1", Text: "Read more"},
		{Hash: "h2", Text: "Shop now"},
		{Hash: "h1", Text: "Read more"},
		{Hash: "h1", Text: "Read more"},
	}

	_, misses := ParallelCacheLookup(c, segments, "fr", "")

	if got := c.lookups.Load(); got != 2 {
		t.Errorf("lookups = %d, want 2", got)
	}
	if len(misses) != 2 || misses[0].Hash != "h1" || misses[1].Hash != "h2" {
		t.Errorf("misses = %+v", misses)
	}
}

func TestParallelCacheLookup_NoCache(t *testing.T) {
	segments := []TextSegment{{Hash: "h1", Text: "Hello"}}

	hits, misses := ParallelCacheLookup(nil, segments, "es", "")
	if len(hits) != 0 || len(misses) != 1 {
		t.Errorf("hits=%v misses=%v", hits, misses)
	}

	hits, misses = ParallelCacheLookup(newCountingCache(0), nil, "es", "")
	if len(hits) != 0 || len(misses) != 0 {
		t.Errorf("empty input: hits=%v misses=%v", hits, misses)
	}
}

func TestParallelCacheLookup_Concurrent(t *testing.T) {
	c := newCountingCache(5 * time.Millisecond)
	segments := make([]TextSegment, 3*maxCacheLookups)
	for i := range segments {
		segments[i] = TextSegment{Hash: fmt.Sprintf("h%d", i), Text: "text"}
	}

	start := time.Now()
	_, misses := ParallelCacheLookup(c, segments, "de", "")
	elapsed := time.Since(start)

	if len(misses) != len(segments) {
		t.Fatalf("misses = %d", len(misses))
	}
	if peak := c.peak.Load(); peak > maxCacheLookups {
		t.Errorf("peak concurrency %d exceeds limit %d", peak, maxCacheLookups)
	}
	// Sequential lookups would need 48 * 5ms
	if elapsed > 150*time.Millisecond {
		t.Errorf("lookups took %v, expected them to overlap", elapsed)
	}
}

func BenchmarkParallelCacheLookup(b *testing.B) {
	c := newCountingCache(0)
	segments := make([]TextSegment, 100)
	for i := range segments {
		h := fmt.Sprintf("h%d", i)
		segments[i] = TextSegment{Hash: h, Text: "text"}
		c.Set(CacheKey(h, "es", ""), "texto")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParallelCacheLookup(c, segments, "es", "")
	}
}
