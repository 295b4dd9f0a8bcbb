package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/25Devmaker/coursehub/config"
)

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// New 根据配置创建邮件发送器；未配置 SMTP 时返回只记日志的实现
func New(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SMTPHost == "" {
		logger.Info("未配置 SMTP，邮件通知已禁用")
		return &nopMailer{logger: logger}
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:   from,
		logger: logger,
	}
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}

	m.logger.Debug("邮件发送成功", zap.String("to", to), zap.String("subject", subject))
	return nil
}

type nopMailer struct {
	logger *zap.Logger
}

func (m *nopMailer) Send(_ context.Context, to, subject, _ string) error {
	m.logger.Debug("跳过邮件发送", zap.String("to", to), zap.String("subject", subject))
	return nil
}
