package notification

import (
	"context"
	"fmt"
	"time"

	"flipearn/internal/domain/service"
	"flipearn/pkg/logger"

	"cloud.google.com/go/firestore"
)

const mailCollection = "mail"

type documentAdder interface {
	Add(ctx context.Context, data interface{}) (*firestore.DocumentRef, *firestore.WriteResult, error)
}

// FirestoreMailer writes messages to the mail collection watched by the
// Firebase "Trigger Email" extension, which performs the SMTP delivery.
type FirestoreMailer struct {
	mail documentAdder
}

func NewFirestoreMailer(client *firestore.Client) *FirestoreMailer {
	return &FirestoreMailer{mail: client.Collection(mailCollection)}
}

func mailDocument(m service.Mail) map[string]interface{} {
	return map[string]interface{}{
		"to": m.To,
		"message": map[string]interface{}{
			"subject": m.Subject,
			"text":    m.Text,
			"html":    m.HTML,
		},
		"createdAt": time.Now(),
	}
}

func (f *FirestoreMailer) Send(ctx context.Context, m service.Mail) error {
	if m.To == "" {
		return fmt.Errorf("mail recipient is required")
	}

	ref, _, err := f.mail.Add(ctx, mailDocument(m))
	if err != nil {
		return fmt.Errorf("failed to queue mail: %w", err)
	}

	logger.Info("Queued mail %s to %s", ref.ID, m.To)
	return nil
}
