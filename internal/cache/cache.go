// Package cache is a small TTL wrapper over an in-process LRU, used to hold
// the assembled feed supersets between polls.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type item struct {
	data      interface{}
	expiresAt time.Time
}

type Cache struct {
	lru *lru.Cache[string, item]
}

// New creates a cache holding up to size entries.
func New(size int) (*Cache, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: l}, nil
}

// Set stores data under key for ttl.
func (c *Cache) Set(key string, data interface{}, ttl time.Duration) {
	c.lru.Add(key, item{data: data, expiresAt: time.Now().Add(ttl)})
}

// Get returns the cached data, or nil when missing or expired.
func (c *Cache) Get(key string) interface{} {
	val, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return val.data
}

// Delete drops a key.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}
