package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/voxa-platform/voxa/internal/history"
)

// ResponseCache stores generated replies keyed by a canonical hash of the
// conversational state. It is LRU-bounded; the reference behavior of
// unbounded growth was an oversight, not a feature.
type ResponseCache struct {
	lru *lru.Cache[string, string]
}

// NewResponseCache creates a response cache holding at most size entries.
func NewResponseCache(size int) (*ResponseCache, error) {
	if size <= 0 {
		size = 1024
	}
	l, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &ResponseCache{lru: l}, nil
}

// Get returns the cached reply for key.
func (c *ResponseCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores a reply under key.
func (c *ResponseCache) Set(key, reply string) {
	c.lru.Add(key, reply)
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.lru.Purge()
}

// Len returns the number of cached replies.
func (c *ResponseCache) Len() int {
	return c.lru.Len()
}

// ResponseKey builds the cache key for one generation. The hash covers the
// system prompt, the replayed history, the transcript and the search mode;
// search and non-search generations of identical inputs must never collide.
func ResponseKey(systemPrompt string, entries []history.Entry, transcript string, webSearch bool) string {
	h := sha256.New()
	writeField(h, systemPrompt)
	for _, e := range entries {
		writeField(h, e.Role)
		writeField(h, e.Content)
	}
	writeField(h, transcript)
	writeField(h, strconv.FormatBool(webSearch))
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h interface{ Write([]byte) (int, error) }, s string) {
	// Length prefix prevents boundary ambiguity between adjacent fields.
	h.Write([]byte(strconv.Itoa(len(s))))
	h.Write([]byte{0})
	h.Write([]byte(s))
}
