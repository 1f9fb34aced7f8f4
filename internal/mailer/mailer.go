package mailer

import (
	"context"
	"fmt"

	"github.com/pressureprofile/rma-starter/internal/config"
	"github.com/pressureprofile/rma-starter/internal/logging"
)

// sendAPI is the slice of the Gmail client the mailer needs.
type sendAPI interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer composes and sends the RMA notification email to the
// customer contact.
type Mailer struct {
	client sendAPI
	config *config.Config
}

// NewMailer creates a mailer backed by the Gmail API.
func NewMailer(cfg *config.Config) *Mailer {
	return NewMailerWithClient(NewClient(cfg), cfg)
}

// NewMailerWithClient creates a mailer over an explicit send backend.
func NewMailerWithClient(client sendAPI, cfg *config.Config) *Mailer {
	return &Mailer{client: client, config: cfg}
}

// NotifyCustomer emails the return instructions for one RMA. Replies
// go to the handling office's contact; unknown office codes fall back
// to the default office.
func (m *Mailer) NotifyCustomer(ctx context.Context, recipient, contactName, rmaProjectID string, rmaNumber int, officeCode string) error {
	office := m.config.OfficeFor(officeCode)

	msg := Message{
		To:       recipient,
		ReplyTo:  office.ReplyTo,
		FromName: m.config.MailFromName,
		Subject:  Subject,
		Body:     BodyText(contactName, rmaProjectID, rmaNumber, office),
	}
	if err := m.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to notify customer: %w", err)
	}
	logging.Infof("Sent RMA %d notification to %s", rmaNumber, recipient)
	return nil
}
