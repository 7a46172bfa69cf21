package services

import (
	"testing"
)

func TestRateLimiter(t *testing.T) {
	t.Run("突发额度内放行", func(t *testing.T) {
		rl := NewRateLimiter(60)
		defer rl.Close()
		for i := 0; i < 10; i++ {
			if !rl.Allow("client-a") {
				t.Fatalf("第 %d 个请求应在突发额度内放行", i+1)
			}
		}
	})

	t.Run("超出突发额度被拒绝", func(t *testing.T) {
		rl := NewRateLimiter(60)
		defer rl.Close()
		for i := 0; i < 10; i++ {
			rl.Allow("client-b")
		}
		if rl.Allow("client-b") {
			t.Error("耗尽突发额度后的请求应被拒绝")
		}
	})

	t.Run("不同客户端互不影响", func(t *testing.T) {
		rl := NewRateLimiter(60)
		defer rl.Close()
		for i := 0; i < 10; i++ {
			rl.Allow("client-c")
		}
		if !rl.Allow("client-d") {
			t.Error("另一个客户端的首个请求应被放行")
		}
	})

	t.Run("非法配置使用默认值", func(t *testing.T) {
		rl := NewRateLimiter(0)
		defer rl.Close()
		if !rl.Allow("client-e") {
			t.Error("默认配置下首个请求应被放行")
		}
	})

	t.Run("Close幂等且不影响Allow", func(t *testing.T) {
		rl := NewRateLimiter(60)
		rl.Close()
		rl.Close()
		if !rl.Allow("client-f") {
			t.Error("关闭后Allow仍应正常工作")
		}
	})
}
