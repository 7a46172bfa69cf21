package services

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter 单个客户端的限流器及其最后活跃时间
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按客户端标识（通常是IP）限流
// 防止问答接口被脚本轰炸；空闲客户端定期清理
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	interval rate.Limit
	burst    int

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter 创建限流器，perMinute为每分钟允许的请求数
// 不再使用时调用Close停止后台清理协程
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	rl := &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		interval: rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    10,
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close 停止后台清理协程（幂等），Allow在关闭后仍可安全调用
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

// Allow 判断客户端本次请求是否放行
func (rl *RateLimiter) Allow(clientID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[clientID]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.interval, rl.burst)}
		rl.clients[clientID] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// cleanupLoop 周期性清理超过10分钟未活跃的客户端，Close后退出
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			rl.mu.Lock()
			for id, c := range rl.clients {
				if c.lastSeen.Before(cutoff) {
					delete(rl.clients, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
