package service

import "context"

type Mail struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// TaskSubmitter runs work detached from the caller. Submit never blocks and
// reports whether the task was accepted.
type TaskSubmitter interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}
