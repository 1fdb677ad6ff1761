package summarize

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoized descriptions.
const DefaultCacheSize = 1024

// Key identifies a description. An empty Declaration denotes the whole file.
type Key struct {
	File        string
	Declaration string
}

// Cache memoizes descriptions by Key. It is owned by the caller and passed
// to whatever needs it; nothing in this package holds one implicitly.
type Cache struct {
	lru *lru.Cache[Key, string]
}

// NewCache creates a cache holding at most size descriptions.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[Key, string](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

func (c *Cache) Get(k Key) (string, bool) { return c.lru.Get(k) }

func (c *Cache) Put(k Key, description string) { c.lru.Add(k, description) }

// Invalidate drops one description so the next request regenerates it.
func (c *Cache) Invalidate(k Key) { c.lru.Remove(k) }

// Purge drops every description.
func (c *Cache) Purge() { c.lru.Purge() }

func (c *Cache) Len() int { return c.lru.Len() }
