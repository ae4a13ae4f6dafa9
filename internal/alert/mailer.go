package alert

import (
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	mail "github.com/go-mail/mail/v2"
)

// Mailer sends operational alert emails for high-severity notifications.
// An unconfigured mailer is valid and degrades every Send to a logged no-op.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	to   []string

	skipTLSVerify bool
}

func NewMailerFromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}

	var to []string
	if raw := os.Getenv("ALERT_TO"); raw != "" {
		for _, addr := range strings.Split(raw, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				to = append(to, addr)
			}
		}
	}

	return &Mailer{
		host:          os.Getenv("SMTP_HOST"),
		port:          port,
		user:          os.Getenv("SMTP_USER"),
		pass:          os.Getenv("SMTP_PASS"),
		from:          os.Getenv("SMTP_FROM"),
		to:            to,
		skipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
}

func (m *Mailer) Configured() bool {
	return m.host != "" && m.from != "" && len(m.to) > 0
}

func (m *Mailer) Send(subject, body string) error {
	if !m.Configured() {
		log.Printf("alert mailer not configured, dropping alert: %s", subject)
		return nil
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := mail.NewDialer(m.host, m.port, m.user, m.pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         m.host,
		InsecureSkipVerify: m.skipTLSVerify,
	}

	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}
