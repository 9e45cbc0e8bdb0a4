// Package ratelimit — LoginRateLimiter: brute-force saldırılarına karşı
// IP bazlı login rate limiting.
//
// Tasarım:
// - Her IP adresi için sliding window ile istek sayısı takip edilir.
// - Window süresi içinde maxAttempts aşılırsa istek reddedilir.
// - Başarılı login sonrası Reset() ile sayaç sıfırlanır.
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir.
//
// Neden in-memory?
// Tek process'li deploy için yeterli — SQLite'a her denemede yazmak
// gereksiz I/O yaratır, Redis bağımlılığı da istemiyoruz.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency) —
// handlers ↔ middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, bir IP adresi için istek sayacı ve window başlangıç zamanı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// LoginRateLimiter, IP bazlı login rate limiting.
//
// maxAttempts: Bir window içinde izin verilen maksimum istek sayısı.
// window: Rate limit pencere süresi (örn: 2 dakika).
//
// Kullanım:
//
//	limiter := NewLoginRateLimiter(5, 2*time.Minute)
//	// Login handler'da:
//	if !limiter.Allow(ip) { return 429 }
//	// Başarılı login'de:
//	limiter.Reset(ip)
type LoginRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxAttempts int
	window      time.Duration
	stopCleanup chan struct{}
}

// NewLoginRateLimiter, yeni rate limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		buckets:     make(map[string]*bucket),
		maxAttempts: maxAttempts,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen IP'nin istek yapmasına izin verilip verilmediğini döner.
// İzin veriliyorsa sayaç artırılır.
func (rl *LoginRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[ip]

	if !ok || now.Sub(b.windowStart) > rl.window {
		// Yeni IP veya window süresi dolmuş — yeni pencere başlat
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	if b.count >= rl.maxAttempts {
		return false
	}

	b.count++
	return true
}

// Reset, başarılı login sonrası IP sayacını sıfırlar.
func (rl *LoginRateLimiter) Reset(ip string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.buckets, ip)
}

// RetryAfter, IP'nin tekrar deneme yapabileceği süreyi saniye olarak döner.
func (rl *LoginRateLimiter) RetryAfter(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, ok := rl.buckets[ip]
	if !ok {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop, arka plan temizleme goroutine'ini durdurur.
func (rl *LoginRateLimiter) Stop() {
	close(rl.stopCleanup)
}

// cleanupLoop, süresi dolmuş bucket'ları periyodik olarak siler.
func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, b := range rl.buckets {
				if now.Sub(b.windowStart) > rl.window {
					delete(rl.buckets, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}

// ClientIP, request'ten client IP'sini çıkarır.
// Reverse proxy arkasında X-Forwarded-For / X-Real-IP header'larına bakar,
// yoksa RemoteAddr kullanılır.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// İlk IP gerçek client'tır (proxy'ler sona ekler)
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TooManyRequests, 429 yanıtı için standart mesaj üretir.
func TooManyRequests(retryAfter int) string {
	return fmt.Sprintf("too many attempts, retry after %d seconds", retryAfter)
}
