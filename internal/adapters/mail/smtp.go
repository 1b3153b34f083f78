package mail

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"

	"github.com/osavchuk/contacts-api/internal/infra/config"
)

// Sender delivers a verification or reset link to a recipient. Delivery runs
// off the request path; failures are the sender's problem, never the
// caller's response.
type Sender interface {
	Send(recipient, subject, link string) error
}

// SMTPSender speaks submission over STARTTLS (587) or implicit TLS (465).
// When the host is not configured, or delivery fails, the link is written to
// the log instead so local setups keep working without a mail account.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	log      *zap.Logger
}

func NewSMTPSender(cfg *config.Config, log *zap.Logger) *SMTPSender {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if from == "" {
		from = "no-reply@example.com"
	}
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		log:      log,
	}
}

func (s *SMTPSender) Send(recipient, subject, link string) error {
	if s.host == "" || s.user == "" || s.password == "" {
		s.log.Info("smtp not configured, link logged instead",
			zap.String("recipient", recipient), zap.String("link", link))
		return nil
	}

	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + recipient + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		"Click to continue: " + link + "\r\n")

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	var err error
	if s.port == 465 {
		err = s.sendImplicitTLS(addr, auth, recipient, msg)
	} else {
		err = smtp.SendMail(addr, auth, s.from, []string{recipient}, msg)
	}
	if err != nil {
		s.log.Warn("smtp send failed, link logged instead",
			zap.String("recipient", recipient), zap.String("link", link), zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Info("mail sent", zap.String("recipient", recipient), zap.String("subject", subject))
	return nil
}

func (s *SMTPSender) sendImplicitTLS(addr string, auth smtp.Auth, recipient string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
