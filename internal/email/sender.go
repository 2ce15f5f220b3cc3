package email

import "context"

// Sender delivers transactional email (verification codes, account notices).
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}
