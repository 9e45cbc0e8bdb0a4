// Package cache — generic in-memory TTL cache.
//
// TTLCache, belirli bir süre sonra süresi dolan kayıtları tutan thread-safe
// bir cache'tir. Sık okunan ama nadiren değişen veriler için kullanılır —
// bu projede auth middleware'ın her request'te yaptığı kullanıcı lookup'ını
// hafifletir.
//
// Get süresi dolmuş entry'yi döndürmez ama map'ten de silmez; fiziksel
// temizlik periyodik cleanup goroutine'ine bırakılır. Böylece Get için
// RLock yeterli olur.
package cache

import (
	"sync"
	"time"
)

// entry, cache'teki tek bir kayıttır.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache, generic in-memory TTL cache.
//
//	c := cache.New[string, *models.User](30*time.Second, 5*time.Minute)
//	c.Set("id", user)
//	u, ok := c.Get("id")
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration

	stopCleanup chan struct{}
}

// New, yeni bir TTLCache oluşturur ve periyodik temizleme goroutine'ini
// başlatır. cleanupInterval, süresi dolan entry'lerin map'ten ne sıklıkla
// silineceğini belirler.
func New[K comparable, V any](ttl, cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries:     make(map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.evictExpired()
			case <-c.stopCleanup:
				return
			}
		}
	}()

	return c
}

// Get, cache'ten bir değer okur.
// (value, true) eğer key varsa ve süresi dolmamışsa; aksi halde (zero, false).
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, cache'e bir değer yazar.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete, belirli bir key'i cache'ten siler (invalidation).
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// Clear, tüm cache'i boşaltır.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]entry[V])
}

// Close, periyodik temizleme goroutine'ini durdurur.
func (c *TTLCache[K, V]) Close() {
	close(c.stopCleanup)
}

// evictExpired, süresi dolan entry'leri map'ten fiziksel olarak siler.
func (c *TTLCache[K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
