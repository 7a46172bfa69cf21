package services

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// EmailSender SMTP邮件发送器
// 博主不在线时联系通知通过邮件兜底送达
type EmailSender struct {
	server    string
	port      int
	sender    string
	password  string
	recipient string // 默认收件人（博主邮箱）
}

// NewEmailSender 创建邮件发送器
func NewEmailSender(server string, port int, sender, password, recipient string) *EmailSender {
	return &EmailSender{
		server:    server,
		port:      port,
		sender:    sender,
		password:  password,
		recipient: recipient,
	}
}

// Configured 发件人信息是否配置完整
func (e *EmailSender) Configured() bool {
	return e.sender != "" && e.password != "" && e.recipient != ""
}

// Send 发送纯文本邮件，recipient为空时发给默认收件人
// 主题按RFC 2047编码以支持中文
func (e *EmailSender) Send(subject, body, recipient string) error {
	if !e.Configured() {
		return fmt.Errorf("未配置发件人邮箱或密码，请设置SENDER_EMAIL和SENDER_PASSWORD环境变量")
	}
	to := recipient
	if to == "" {
		to = e.recipient
	}

	headers := []string{
		fmt.Sprintf("From: %s", e.sender),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("utf-8", subject)),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
	}
	msg := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	addr := fmt.Sprintf("%s:%d", e.server, e.port)
	auth := smtp.PlainAuth("", e.sender, e.password, e.server)
	if err := smtp.SendMail(addr, auth, e.sender, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("邮件发送失败: %w", err)
	}
	return nil
}
