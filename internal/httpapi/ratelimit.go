package httpapi

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxClients bounds the limiter table; the least recently seen client is
// evicted first.
const maxClients = 10000

// ClientLimiter keeps one token bucket per client address. It reads
// r.RemoteAddr, so mount it after middleware.RealIP when behind a proxy.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewClientLimiter allows r requests per second with bursts of b. Entries
// idle for longer than idle are swept periodically until Close.
func NewClientLimiter(r rate.Limit, b int, idle time.Duration) *ClientLimiter {
	l := &ClientLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     r,
		burst:    b,
		idle:     idle,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Close stops the sweeper.
func (l *ClientLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Allow reports whether client may make a request now.
func (l *ClientLimiter) Allow(client string) bool {
	return l.limiter(client).Allow()
}

func (l *ClientLimiter) limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[client]
	if !ok {
		if len(l.limiters) >= maxClients {
			l.evictOldest()
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[client] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}

func (l *ClientLimiter) evictOldest() {
	var oldest string
	var oldestTime time.Time
	for client, entry := range l.limiters {
		if oldest == "" || entry.lastAccess.Before(oldestTime) {
			oldest = client
			oldestTime = entry.lastAccess
		}
	}
	delete(l.limiters, oldest)
}

func (l *ClientLimiter) sweepLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *ClientLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for client, entry := range l.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(l.limiters, client)
		}
	}
}

func (l *ClientLimiter) clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects requests over the limit with 429.
func (l *ClientLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientAddr(r.RemoteAddr)) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(remote string) string {
	if host, _, err := net.SplitHostPort(remote); err == nil {
		return host
	}
	return remote
}
