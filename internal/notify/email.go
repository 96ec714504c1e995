package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/medreminder/internal/model"
)

// EmailSink sends the reminder message over SMTP.
type EmailSink struct {
	cfg  model.EmailConfig
	send func(ctx context.Context, cfg model.EmailConfig, msg []byte) error
	now  func() time.Time
}

// NewEmailSink creates an EmailSink. The SMTP login is cfg.From with
// cfg.Password.
func NewEmailSink(cfg model.EmailConfig) *EmailSink {
	return &EmailSink{cfg: cfg, send: sendSMTP, now: time.Now}
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) Notify(ctx context.Context, r model.Reminder) error {
	msg, err := composeEmail(e.cfg.From, e.cfg.To, Subject, Body(r), e.now())
	if err != nil {
		return err
	}
	return e.send(ctx, e.cfg, msg)
}

// composeEmail builds a single-part text/plain RFC 5322 message.
func composeEmail(from, to, subject, body string, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.SetAddressList("From", []*mail.Address{{Address: from}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

// sendSMTP delivers msg using implicit TLS when cfg.TLS is set and
// STARTTLS otherwise.
func sendSMTP(ctx context.Context, cfg model.EmailConfig, msg []byte) error {
	addr := net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort)

	if cfg.TLS {
		return sendSMTPWithTLS(ctx, addr, cfg, msg)
	}
	return sendSMTPWithStartTLS(ctx, addr, cfg, msg)
}

// sendSMTPWithTLS sends an email over an implicit TLS connection.
func sendSMTPWithTLS(ctx context.Context, addr string, cfg model.EmailConfig, msg []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: cfg.SMTPHost}}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("TLS dial to %s: %w", addr, err)
	}
	setDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, cfg.From, cfg.To, msg)
}

// sendSMTPWithStartTLS sends an email using STARTTLS.
func sendSMTPWithStartTLS(ctx context.Context, addr string, cfg model.EmailConfig, msg []byte) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial to %s: %w", addr, err)
	}
	setDeadline(ctx, conn)

	client, err := smtp.NewClient(conn, cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: cfg.SMTPHost}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("SMTP STARTTLS: %w", err)
	}

	auth := smtp.PlainAuth("", cfg.From, cfg.Password, cfg.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	return sendMailViaSMTPClient(client, cfg.From, cfg.To, msg)
}

// sendMailViaSMTPClient sends a message using an already-authenticated
// SMTP client.
func sendMailViaSMTPClient(client *smtp.Client, from, to string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL FROM: %w", err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT TO: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA: %w", err)
	}

	if _, err := writer.Write(msg); err != nil {
		return fmt.Errorf("writing email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing email body: %w", err)
	}

	return client.Quit()
}

// setDeadline bounds the whole SMTP exchange by the context deadline.
func setDeadline(ctx context.Context, conn net.Conn) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
}
