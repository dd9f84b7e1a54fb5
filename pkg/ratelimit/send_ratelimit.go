// SendRateLimiter — yazma endpoint'leri (mesaj gönderme, gönderi/yorum
// oluşturma) için kullanıcı bazlı spam koruması.
//
// LoginRateLimiter'dan farklar:
// - Key: userID (IP değil) — authenticated endpoint, kullanıcı bazlı takip.
// - Cooldown: Window süresi ve ceza süresi ayrıdır.
//   Limit aşıldığında kullanıcı cooldown süresi kadar bekler.
//
// Örnek: 5 saniye window içinde 5 yazma → izin verilir.
// 6. yazmada cooldown başlar → 15 saniye boyunca tüm yazmalar reddedilir.
// Cooldown bitince window sıfırlanır.
package ratelimit

import (
	"sync"
	"time"
)

// sendBucket, bir kullanıcı için yazma sayacı ve cooldown bilgisi tutar.
type sendBucket struct {
	count         int
	windowStart   time.Time
	cooldownUntil time.Time // zero value = cooldown yok
}

// SendRateLimiter, kullanıcı bazlı yazma spam koruması.
//
// Kullanım:
//
//	limiter := NewSendRateLimiter(5, 5*time.Second, 15*time.Second)
//	// Send handler'da:
//	if !limiter.Allow(userID) { return 429 }
type SendRateLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*sendBucket
	maxSends    int
	window      time.Duration
	cooldown    time.Duration
	stopCleanup chan struct{}
}

// NewSendRateLimiter, yeni yazma rate limiter'ı oluşturur ve arka plan
// temizleme goroutine'ini başlatır.
func NewSendRateLimiter(maxSends int, window, cooldown time.Duration) *SendRateLimiter {
	rl := &SendRateLimiter{
		buckets:     make(map[string]*sendBucket),
		maxSends:    maxSends,
		window:      window,
		cooldown:    cooldown,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen kullanıcının yazma işlemine izin verilip verilmediğini kontrol eder.
//
// Akış:
// 1. Cooldown'daysa → reject (cooldown bitmeden hiçbir yazma geçmez).
// 2. Window dolmuşsa → yeni pencere başlat.
// 3. Window içindeyse → count artır, max aşıldıysa cooldown başlat.
func (rl *SendRateLimiter) Allow(userID string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[userID]
	if !exists {
		rl.buckets[userID] = &sendBucket{count: 1, windowStart: now}
		return true
	}

	// Cooldown aktif mi?
	if !b.cooldownUntil.IsZero() {
		if now.Before(b.cooldownUntil) {
			return false
		}
		// Cooldown bitti — pencereyi sıfırla
		b.cooldownUntil = time.Time{}
		b.count = 1
		b.windowStart = now
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	if b.count > rl.maxSends {
		b.cooldownUntil = now.Add(rl.cooldown)
		return false
	}
	return true
}

// RetryAfterSeconds, cooldown'daki kullanıcının kalan bekleme süresini döner.
func (rl *SendRateLimiter) RetryAfterSeconds(userID string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[userID]
	if !exists || b.cooldownUntil.IsZero() {
		return 0
	}

	remaining := time.Until(b.cooldownUntil)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

func (rl *SendRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *SendRateLimiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for userID, b := range rl.buckets {
		expired := now.Sub(b.windowStart) > rl.window &&
			(b.cooldownUntil.IsZero() || now.After(b.cooldownUntil))
		if expired {
			delete(rl.buckets, userID)
		}
	}
}
