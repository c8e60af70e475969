package email

import (
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/shoplead/shoplead_server/config"
	"github.com/shoplead/shoplead_server/internal/model"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg  *config.EmailConfig
	send sendFunc
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg, send: smtp.SendMail}
}

// Enabled 配置了 SMTP 与收件人时才发送
func (s *Service) Enabled() bool {
	return s.cfg != nil && s.cfg.SMTPHost != "" && len(s.cfg.AlertRecipients) > 0
}

var ncrAlertTemplate = template.Must(template.New("ncr").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 700px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #dc2626;">新增不合格品记录</h2>
        <p>本次导入产生了 {{len .}} 条处于 Active 状态的 NCR：</p>
        <table style="border-collapse: collapse; width: 100%;">
            <tr style="background-color: #f3f4f6;">
                <th style="padding: 6px; text-align: left;">NCR</th>
                <th style="padding: 6px; text-align: left;">Job</th>
                <th style="padding: 6px; text-align: left;">Op</th>
                <th style="padding: 6px; text-align: left;">Part</th>
                <th style="padding: 6px; text-align: right;">Planned</th>
                <th style="padding: 6px; text-align: right;">Actual</th>
            </tr>
            {{range .}}
            <tr>
                <td style="padding: 6px;">{{.NCRNumber}}</td>
                <td style="padding: 6px;">{{.JobNumber}}</td>
                <td style="padding: 6px;">{{.OperationNumber}}</td>
                <td style="padding: 6px;">{{.PartName}}</td>
                <td style="padding: 6px; text-align: right;">{{printf "%.1f" .PlannedHours}}</td>
                <td style="padding: 6px; text-align: right;">{{printf "%.1f" .ActualHours}}</td>
            </tr>
            {{end}}
        </table>
        <p>请尽快补充问题描述、根本原因与纠正措施。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`))

// BuildNCRAlert 生成 NCR 告警邮件的标题和正文
func BuildNCRAlert(ncrs []*model.NCRTracker) (string, string, error) {
	subject := fmt.Sprintf("NCR 告警 - %d 条新增记录", len(ncrs))

	var body strings.Builder
	if err := ncrAlertTemplate.Execute(&body, ncrs); err != nil {
		return "", "", err
	}
	return subject, body.String(), nil
}

// NotifyNCRs 把新增的 NCR 发给全部告警收件人
func (s *Service) NotifyNCRs(ncrs []*model.NCRTracker) error {
	if !s.Enabled() || len(ncrs) == 0 {
		return nil
	}

	subject, body, err := BuildNCRAlert(ncrs)
	if err != nil {
		return err
	}
	return s.sendHTML(s.cfg.AlertRecipients, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to []string, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", strings.Join(to, ", ")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return s.send(addr, auth, s.cfg.From, to, []byte(msg.String()))
}
