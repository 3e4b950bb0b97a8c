package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func TestMailboxErrorMessage(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		err := &MailboxError{}
		assert.Equal(t, "no shared mailbox configured", err.Error())
	})

	t.Run("unresolved", func(t *testing.T) {
		err := &MailboxError{Mailbox: "ra-npai@example.com", Err: assert.AnError}
		assert.Contains(t, err.Error(), "ra-npai@example.com")
	})
}

func TestFlattenParts(t *testing.T) {
	root := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain"},
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html"},
					{Filename: "Export_NPAI.zip", MimeType: "application/zip"},
				},
			},
		},
	}

	parts := flattenParts(root)
	require.Len(t, parts, 5, "root plus every nested part")

	var zips []string
	for _, p := range parts {
		if p.Filename != "" {
			zips = append(zips, p.Filename)
		}
	}
	assert.Equal(t, []string{"Export_NPAI.zip"}, zips)
}

func TestFlattenPartsNil(t *testing.T) {
	assert.Nil(t, flattenParts(nil))
}
