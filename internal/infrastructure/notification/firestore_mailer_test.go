package notification

import (
	"context"
	"errors"
	"testing"

	"flipearn/internal/domain/service"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollection struct {
	docs []interface{}
	err  error
}

func (f *fakeCollection) Add(ctx context.Context, data interface{}) (*firestore.DocumentRef, *firestore.WriteResult, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	f.docs = append(f.docs, data)
	return &firestore.DocumentRef{ID: "doc-1"}, &firestore.WriteResult{}, nil
}

func TestFirestoreMailer_Send(t *testing.T) {
	col := &fakeCollection{}
	mailer := &FirestoreMailer{mail: col}

	err := mailer.Send(context.Background(), service.Mail{To: "owner@example.com", Subject: "Listing removed", Text: "t", HTML: "<p>t</p>"})
	require.NoError(t, err)

	require.Len(t, col.docs, 1)
	doc := col.docs[0].(map[string]interface{})
	assert.Equal(t, "owner@example.com", doc["to"])
	msg := doc["message"].(map[string]interface{})
	assert.Equal(t, "Listing removed", msg["subject"])
	assert.Equal(t, "<p>t</p>", msg["html"])
}

func TestFirestoreMailer_Errors(t *testing.T) {
	mailer := &FirestoreMailer{mail: &fakeCollection{err: errors.New("unavailable")}}

	assert.Error(t, mailer.Send(context.Background(), service.Mail{}))
	assert.ErrorContains(t, mailer.Send(context.Background(), service.Mail{To: "a@b.c"}), "unavailable")
}
