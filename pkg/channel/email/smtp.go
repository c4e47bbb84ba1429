package email

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/agrovia/notifykit/pkg/channel"
)

type smtpProvider struct {
	addr string
	auth smtp.Auth
	host string
}

// newSMTPProvider builds a plain SMTP provider from the channel settings
// keys "host", "port", "username", and "password". Auth is skipped when
// no username is configured, for local relays.
func newSMTPProvider(cfg channel.Config) (Provider, error) {
	host := cfg.Setting("host")
	if host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConfig)
	}
	port := cfg.SettingInt("port")
	if port == 0 {
		port = 587
	}

	p := &smtpProvider{
		addr: fmt.Sprintf("%s:%d", host, port),
		host: host,
	}
	if username := cfg.Setting("username"); username != "" {
		p.auth = smtp.PlainAuth("", username, cfg.Setting("password"), host)
	}
	return p, nil
}

func (p *smtpProvider) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), p.host)
	raw := composeMIME(messageID, msg)

	if err := smtp.SendMail(p.addr, p.auth, msg.From, []string{msg.To}, raw); err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	return messageID, nil
}

// composeMIME builds a multipart/alternative message carrying both the
// text and HTML bodies, omitting a part when its body is empty.
func composeMIME(messageID string, msg Message) []byte {
	var b strings.Builder
	boundary := strings.ReplaceAll(uuid.New().String(), "-", "")

	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "From: %s\r\n", msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.TextBody)
		fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.HTMLBody)
		fmt.Fprintf(&b, "--%s--\r\n", boundary)
	case msg.HTMLBody != "":
		fmt.Fprintf(&b, "Content-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", msg.HTMLBody)
	default:
		fmt.Fprintf(&b, "Content-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", msg.TextBody)
	}

	return []byte(b.String())
}
