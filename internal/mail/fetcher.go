// Package mail is the inbound attachment feed: it watches a shared mailbox
// for ZIP deliveries and saves each one exactly once. The pipeline only
// depends on the Fetcher port; Gmail is the shipped implementation.
package mail

import (
	"context"
	"fmt"
)

// Fetcher saves newly arrived ZIP attachments into dir and returns the
// paths written. Attachments already present on disk are not re-saved.
type Fetcher interface {
	FetchZIPs(ctx context.Context, dir string) ([]string, error)
}

// MailboxError reports that the shared mailbox could not be resolved. It is
// fatal to the fetch step; retrying is an operator concern.
type MailboxError struct {
	Mailbox string
	Err     error
}

func (e *MailboxError) Error() string {
	if e.Mailbox == "" {
		return "no shared mailbox configured"
	}
	return fmt.Sprintf("cannot resolve shared mailbox %s: %v", e.Mailbox, e.Err)
}

func (e *MailboxError) Unwrap() error { return e.Err }
