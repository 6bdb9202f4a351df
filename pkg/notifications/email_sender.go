package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"
)

var (
	// ErrInvalidEmailConfig is returned when the Postmark sender is built
	// without the required tokens or sender identity.
	ErrInvalidEmailConfig = errors.New("invalid email sender configuration")
	// ErrFailedToSendEmail is returned when the email provider rejects a send.
	ErrFailedToSendEmail = errors.New("failed to send notification email")
)

// EmailSender delivers a notification over the email channel. It is
// consulted only for user-scoped notifications whose preferences enable
// channels.email, and always best-effort: a failed send never fails Create.
type EmailSender interface {
	SendNotification(ctx context.Context, userID string, n Notification) error
}

// AddressResolver maps an opaque user ID to an email address. Owned by
// the application's directory, injected here.
type AddressResolver func(ctx context.Context, userID string) (string, error)

// EmailConfig holds Postmark delivery settings.
type EmailConfig struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"NOTIFICATIONS_SENDER_EMAIL"`
}

// PostmarkSender sends notification emails through Postmark.
type PostmarkSender struct {
	client  *postmark.Client
	sender  string
	resolve AddressResolver
}

// NewPostmarkSender creates a Postmark-backed EmailSender. Tokens, sender
// identity, and a resolver are all required: a partially configured email
// channel should fail at startup, not at first delivery.
func NewPostmarkSender(cfg EmailConfig, resolve AddressResolver) (*PostmarkSender, error) {
	if cfg.PostmarkServerToken == "" || cfg.PostmarkAccountToken == "" {
		return nil, fmt.Errorf("%w: postmark tokens are required", ErrInvalidEmailConfig)
	}
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("%w: sender email is required", ErrInvalidEmailConfig)
	}
	if resolve == nil {
		return nil, fmt.Errorf("%w: address resolver is required", ErrInvalidEmailConfig)
	}

	return &PostmarkSender{
		client:  postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		sender:  cfg.SenderEmail,
		resolve: resolve,
	}, nil
}

func (s *PostmarkSender) SendNotification(ctx context.Context, userID string, n Notification) error {
	addr, err := s.resolve(ctx, userID)
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	body := fmt.Sprintf("<h2>%s</h2><p>%s</p>", n.Title, n.Message)
	if n.ActionURL != "" {
		label := n.ActionLabel
		if label == "" {
			label = "View"
		}
		body += fmt.Sprintf(`<p><a href="%s">%s</a></p>`, n.ActionURL, label)
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     s.sender,
		To:       addr,
		Subject:  n.Title,
		HTMLBody: body,
		Tag:      string(n.Category),
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
