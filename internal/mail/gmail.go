package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"npaicli/internal/config"
)

// GmailFetcher reads ZIP attachments from a shared Gmail mailbox.
type GmailFetcher struct {
	svc     *gmail.Service
	mailbox string
	query   string
	logger  *slog.Logger
}

var _ Fetcher = (*GmailFetcher)(nil)

// NewGmailFetcher builds a Gmail client from configuration. Credentials come
// from an inline JSON blob, a credentials file, or application default
// credentials, in that order. The mailbox is resolved up front so a
// misconfigured address fails the run immediately.
func NewGmailFetcher(ctx context.Context, cfg config.MailConfig, logger *slog.Logger) (*GmailFetcher, error) {
	if strings.TrimSpace(cfg.Mailbox) == "" {
		return nil, &MailboxError{}
	}

	opts := []option.ClientOption{option.WithScopes(gmail.GmailReadonlyScope)}
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gmail service: %w", err)
	}

	if _, err := svc.Users.GetProfile(cfg.Mailbox).Context(ctx).Do(); err != nil {
		return nil, &MailboxError{Mailbox: cfg.Mailbox, Err: err}
	}

	return &GmailFetcher{
		svc:     svc,
		mailbox: cfg.Mailbox,
		query:   cfg.Query,
		logger:  logger,
	}, nil
}

// FetchZIPs lists messages matching the configured query and saves every
// ZIP attachment not yet present in dir. A message that cannot be read is
// logged and skipped.
func (g *GmailFetcher) FetchZIPs(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	var saved []string
	pageToken := ""
	for {
		call := g.svc.Users.Messages.List(g.mailbox).Q(g.query).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list mailbox %s: %w", g.mailbox, err)
		}

		for _, ref := range page.Messages {
			paths, err := g.saveMessageZIPs(ctx, ref.Id, dir)
			if err != nil {
				g.logger.Warn("skipping message",
					slog.String("message_id", ref.Id),
					slog.String("error", err.Error()))
				continue
			}
			saved = append(saved, paths...)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	g.logger.Info("mailbox fetch complete",
		slog.String("mailbox", g.mailbox),
		slog.Int("attachments_saved", len(saved)))
	return saved, nil
}

func (g *GmailFetcher) saveMessageZIPs(ctx context.Context, messageID, dir string) ([]string, error) {
	msg, err := g.svc.Users.Messages.Get(g.mailbox, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	var saved []string
	for _, part := range flattenParts(msg.Payload) {
		name := part.Filename
		if name == "" || !strings.HasSuffix(strings.ToLower(name), ".zip") {
			continue
		}

		target := filepath.Join(dir, filepath.Base(name))
		if _, err := os.Stat(target); err == nil {
			continue
		}

		data, err := g.attachmentData(ctx, messageID, part)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attachment %s: %w", name, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to save attachment %s: %w", name, err)
		}

		g.logger.Info("saved attachment",
			slog.String("file", filepath.Base(name)),
			slog.Int("bytes", len(data)))
		saved = append(saved, target)
	}
	return saved, nil
}

func (g *GmailFetcher) attachmentData(ctx context.Context, messageID string, part *gmail.MessagePart) ([]byte, error) {
	encoded := part.Body.Data
	if encoded == "" && part.Body.AttachmentId != "" {
		att, err := g.svc.Users.Messages.Attachments.Get(g.mailbox, messageID, part.Body.AttachmentId).
			Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		encoded = att.Data
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(encoded, "="))
}

// flattenParts walks the MIME tree depth-first; attachments can hide inside
// nested multipart containers.
func flattenParts(root *gmail.MessagePart) []*gmail.MessagePart {
	if root == nil {
		return nil
	}
	parts := []*gmail.MessagePart{root}
	for _, child := range root.Parts {
		parts = append(parts, flattenParts(child)...)
	}
	return parts
}
