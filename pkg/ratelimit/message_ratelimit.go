// MessageRateLimiter — mesaj spam koruması için kullanıcı bazlı rate limiting.
//
// LoginRateLimiter'dan farklar:
// - Key: userID (IP değil) — mesaj gönderimi authenticated bir işlemdir.
// - Window ve ceza süresi (cooldown) ayrıdır: limit aşıldığında kullanıcı
//   cooldown süresi boyunca hiç mesaj gönderemez, cooldown bitince pencere
//   sıfırlanır.
//
// Örnek: 5 saniyelik window içinde 5 mesaja izin, 6. mesajda 15 saniye ceza.
package ratelimit

import (
	"sync"
	"time"
)

// messageBucket, bir kullanıcı için mesaj sayacı ve cooldown bilgisi tutar.
type messageBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// MessageRateLimiter, kullanıcı bazlı mesaj spam koruması.
//
// maxMessages: Bir window içinde izin verilen maksimum mesaj sayısı.
// window: Sayaç pencere süresi (örn: 5 saniye).
// cooldown: Limit aşıldığında uygulanan ceza süresi (örn: 15 saniye).
type MessageRateLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*messageBucket
	maxMessages int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewMessageRateLimiter, yeni limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
func NewMessageRateLimiter(maxMessages int, window, cooldown time.Duration) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets:     make(map[string]*messageBucket),
		maxMessages: maxMessages,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, kullanıcının mesaj göndermesine izin verilip verilmediğini döner.
// İkinci dönüş değeri: cooldown'da ise kalan süre (saniye), değilse 0.
func (rl *MessageRateLimiter) Allow(userID string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[userID]

	if !ok {
		rl.buckets[userID] = &messageBucket{count: 1, windowStart: now}
		return true, 0
	}

	// Cooldown aktif mi?
	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			remaining := int(b.cooldownUntil.Sub(now).Seconds()) + 1
			return false, remaining
		}
		// Cooldown bitti — pencereyi sıfırla
		b.cooldownUntil = time.Time{}
		b.count = 1
		b.windowStart = now
		return true, 0
	}

	if now.Sub(b.windowStart) > rl.window {
		// Pencere doldu — yeni pencere başlat
		b.count = 1
		b.windowStart = now
		return true, 0
	}

	if b.count >= rl.maxMessages {
		// Limit aşıldı — cooldown başlat
		b.cooldownUntil = now.Add(rl.cooldown)
		return false, int(rl.cooldown.Seconds())
	}

	b.count++
	return true, 0
}

// Stop, arka plan temizleme goroutine'ini durdurur.
func (rl *MessageRateLimiter) Stop() {
	close(rl.stopCleanup)
}

// cleanupLoop, inaktif bucket'ları periyodik olarak siler.
func (rl *MessageRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for userID, b := range rl.buckets {
				inactive := now.Sub(b.windowStart) > rl.window
				cooled := b.cooldownUntil.IsZero() || now.After(b.cooldownUntil)
				if inactive && cooled {
					delete(rl.buckets, userID)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCleanup:
			return
		}
	}
}
