package mailbox

import (
	"time"

	"vmail/models"
)

// DemoEmails is the canned collection shown when a folder cannot be
// loaded. It is an explicit degraded mode: the session that loads it also
// reports the underlying error.
func DemoEmails() []models.EmailRecord {
	now := time.Now().UTC()
	return []models.EmailRecord{
		{
			ID:        "demo-1",
			From:      "welcome@vmail.example",
			To:        []string{"you@vmail.example"},
			Subject:   "Welcome to vmail",
			Preview:   "Thanks for signing up. Your mailbox is ready to go.",
			Timestamp: now.Add(-1 * time.Hour),
			Folder:    models.FolderInbox,
			Read:      false,
		},
		{
			ID:        "demo-2",
			From:      "team@vmail.example",
			To:        []string{"you@vmail.example"},
			Subject:   "Getting started",
			Preview:   "A quick tour: folders on the left, search at the top, compose anywhere.",
			Timestamp: now.Add(-3 * time.Hour),
			Folder:    models.FolderInbox,
			Read:      false,
			Starred:   true,
		},
		{
			ID:        "demo-3",
			From:      "security@vmail.example",
			To:        []string{"you@vmail.example"},
			Subject:   "New sign-in to your account",
			Preview:   "We noticed a new sign-in. If this was you, no action is needed.",
			Timestamp: now.Add(-26 * time.Hour),
			Folder:    models.FolderInbox,
			Read:      true,
		},
		{
			ID:        "demo-4",
			From:      "you@vmail.example",
			To:        []string{"friend@example.com"},
			Subject:   "Lunch tomorrow?",
			Preview:   "Does noon still work for you?",
			Timestamp: now.Add(-48 * time.Hour),
			Folder:    models.FolderSent,
			Read:      true,
		},
	}
}
