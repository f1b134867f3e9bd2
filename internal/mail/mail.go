// Package mail sends the planner's reminder e-mails.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is a plain-text e-mail.
type Message struct {
	To      []mail.Address
	Subject string
	Body    string
}

func (m Message) HasRecipients() bool { return len(m.To) > 0 }

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatch sends msg and logs failures instead of returning them.
func Dispatch(ctx context.Context, s Sender, logger *slog.Logger, msg Message) bool {
	if err := s.Send(ctx, msg); err != nil {
		logger.Error("send mail failed", "subject", msg.Subject, "error", err)
		return false
	}
	return true
}

// ParseRecipients parses a comma-separated address list.
func ParseRecipients(list string) ([]mail.Address, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	addrs, err := mail.ParseAddressList(list)
	if err != nil {
		return nil, fmt.Errorf("parse recipients: %w", err)
	}
	out := make([]mail.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, *a)
	}
	return out, nil
}

func joinAddresses(addrs []mail.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}

// ==========================
// Console
// ==========================

// Console writes messages to the log. It keeps a copy of everything sent.
type Console struct {
	From       mail.Address
	SubjPrefix string
	Logger     *slog.Logger

	mu   sync.Mutex
	sent []Message
}

func NewConsole(appName, from string, logger *slog.Logger) *Console {
	return &Console{
		From:       mail.Address{Name: appName, Address: from},
		SubjPrefix: "[" + appName + "] ",
		Logger:     logger,
	}
}

func (c *Console) Send(_ context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return nil
	}
	c.Logger.Info("mail",
		"from", c.From.String(),
		"to", joinAddresses(msg.To),
		"subject", c.SubjPrefix+msg.Subject,
		"body", msg.Body,
	)
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	return nil
}

// Sent returns a copy of the messages sent so far.
func (c *Console) Sent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.sent...)
}

// ==========================
// SendGrid
// ==========================

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

type SendGrid struct {
	Key        string
	Host       string
	From       *sgmail.Email
	SubjPrefix string
}

func NewSendGrid(key, appName, from string) *SendGrid {
	return &SendGrid{
		Key:        key,
		Host:       sendGridHost,
		From:       sgmail.NewEmail(appName, from),
		SubjPrefix: "[" + appName + "] ",
	}
}

func (s *SendGrid) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.SubjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.From)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Body))
	return m
}

func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if !msg.HasRecipients() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	req := sendgrid.GetRequest(s.Key, sendGridEndpoint, s.Host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// New picks the sender for provider ("console" or "sendgrid").
func New(provider, apiKey, appName, from string, logger *slog.Logger) (Sender, error) {
	switch provider {
	case "", "console":
		return NewConsole(appName, from, logger), nil
	case "sendgrid":
		if apiKey == "" {
			return nil, fmt.Errorf("mail provider sendgrid requires SENDGRID_API_KEY")
		}
		return NewSendGrid(apiKey, appName, from), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}
