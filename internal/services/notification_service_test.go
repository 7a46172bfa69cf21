package services

import (
	"context"
	"testing"
)

func TestNotificationService(t *testing.T) {
	t.Run("博主离线且未配置邮件时返回错误", func(t *testing.T) {
		n := NewNotificationService(NewWebSocketManager(), nil, NewEmailSender("", 0, "", "", ""), "blogger")
		_, err := n.NotifyContact(context.Background(), "user-1", "session-1", "想联系你", "微信", 0.9)
		if err == nil {
			t.Error("两条通道都不可用时应返回错误")
		}
	})

	t.Run("博主在线状态", func(t *testing.T) {
		ws := NewWebSocketManager()
		n := NewNotificationService(ws, nil, nil, "blogger")
		if n.BloggerOnline() {
			t.Error("无连接时博主不应在线")
		}
	})

	t.Run("Redis不可用时在线数退化为连接数", func(t *testing.T) {
		n := NewNotificationService(NewWebSocketManager(), nil, nil, "blogger")
		if count := n.OnlineUserCount(context.Background()); count != 0 {
			t.Errorf("期望在线数0，但得到 %d", count)
		}
	})

	t.Run("无连接时广播送达数为零", func(t *testing.T) {
		n := NewNotificationService(NewWebSocketManager(), nil, nil, "blogger")
		if delivered := n.ManualBroadcast("测试广播"); delivered != 0 {
			t.Errorf("期望送达数0，但得到 %d", delivered)
		}
	})
}

func TestEmailSenderConfigured(t *testing.T) {
	if NewEmailSender("smtp.qq.com", 587, "", "", "").Configured() {
		t.Error("缺少发件人信息时不应报告已配置")
	}
	if !NewEmailSender("smtp.qq.com", 587, "a@qq.com", "secret", "b@qq.com").Configured() {
		t.Error("完整配置时应报告已配置")
	}
	if err := NewEmailSender("smtp.qq.com", 587, "", "", "").Send("主题", "正文", ""); err == nil {
		t.Error("未配置时发送应返回错误")
	}
}
