package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jasonhuang/blog-assistant/internal/intent"
	"github.com/jasonhuang/blog-assistant/internal/models"
)

func newTestChatService(t *testing.T) *ChatService {
	t.Helper()
	session := intent.NewSession(intent.SessionOptions{
		ModelDir:         t.TempDir(),
		TrainingDataPath: filepath.Join(t.TempDir(), "不存在.json"),
		DisableModel:     true, // 测试走确定性的关键词回退路径
	})
	notification := NewNotificationService(NewWebSocketManager(), nil, NewEmailSender("", 0, "", "", ""), "blogger")
	return NewChatService(session, NewInstructionGate(nil), nil, notification, nil)
}

func TestChatServiceAsk(t *testing.T) {
	svc := newTestChatService(t)
	ctx := context.Background()

	t.Run("隐藏指令优先于意图识别", func(t *testing.T) {
		resp, err := svc.Ask(ctx, models.AskRequest{Question: hiddenInstruction, UserID: "u1"})
		if err != nil {
			t.Fatalf("处理失败: %v", err)
		}
		if resp.Answer != hiddenReply {
			t.Errorf("期望固定应答，但得到 %q", resp.Answer)
		}
		if resp.Intent != "" {
			t.Errorf("隐藏指令不应产生意图标签，但得到 %q", resp.Intent)
		}
	})

	t.Run("联系意图但无法送达时返回道歉话术", func(t *testing.T) {
		resp, err := svc.Ask(ctx, models.AskRequest{Question: "我想联系博主，有微信吗", UserID: "u1"})
		if err != nil {
			t.Fatalf("处理失败: %v", err)
		}
		if resp.Intent != models.IntentContactAuthor {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentContactAuthor, resp.Intent)
		}
		if resp.Answer != contactUndelivered {
			t.Errorf("博主离线且无邮件配置时期望道歉话术，但得到 %q", resp.Answer)
		}
	})

	t.Run("打招呼返回固定话术", func(t *testing.T) {
		resp, err := svc.Ask(ctx, models.AskRequest{Question: "早上好", UserID: "u1"})
		if err != nil {
			t.Fatalf("处理失败: %v", err)
		}
		if resp.Intent != models.IntentCasualChat {
			t.Errorf("期望意图 %s，但得到 %s", models.IntentCasualChat, resp.Intent)
		}
		if resp.Answer != casualChatReply {
			t.Errorf("期望固定话术，但得到 %q", resp.Answer)
		}
	})

	t.Run("技术问题在无LLM时返回降级提示", func(t *testing.T) {
		resp, err := svc.Ask(ctx, models.AskRequest{Question: "什么是docker", UserID: "u1"})
		if err != nil {
			t.Fatalf("处理失败: %v", err)
		}
		if resp.Answer != qaUnavailableReply {
			t.Errorf("无LLM时期望降级提示，但得到 %q", resp.Answer)
		}
	})

	t.Run("决策来源透出", func(t *testing.T) {
		resp, err := svc.Ask(ctx, models.AskRequest{Question: "查看博客文章", UserID: "u1"})
		if err != nil {
			t.Fatalf("处理失败: %v", err)
		}
		if resp.Provenance != string(models.ProvenanceKeywordFallback) {
			t.Errorf("模型禁用时期望关键词回退来源，但得到 %q", resp.Provenance)
		}
	})
}

func TestChatServiceStatus(t *testing.T) {
	svc := newTestChatService(t)
	status := svc.Status(context.Background(), 7)

	if !status.ServiceRunning {
		t.Error("服务状态应为运行中")
	}
	if status.RedisConnected {
		t.Error("未配置Redis时不应报告已连接")
	}
	if status.ModelAvailable {
		t.Error("模型禁用时不应报告模型可用")
	}
	if status.IndexedDocuments != 7 {
		t.Errorf("期望索引文档数7，但得到 %d", status.IndexedDocuments)
	}
	if status.Version == "" {
		t.Error("版本号不应为空")
	}
}
