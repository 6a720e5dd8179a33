package mailbox

import (
	"sort"
	"strings"

	"vmail/models"
)

// LabelPrefix selects a label view: "label-work" shows every record
// carrying the "work" label, regardless of folder.
const LabelPrefix = "label-"

// FolderView is the derived contents of one folder selection plus search
// query. It is recomputed on demand and never stored or mutated by
// callers.
type FolderView struct {
	Folder string
	Query  string
	Emails []models.EmailRecord
}

// Counts are the per-folder counters shown next to folder names. Inbox
// counts unread records only; the others count all matching records. Sent
// is not tracked.
type Counts struct {
	Inbox   int
	Starred int
	Drafts  int
	Spam    int
	Trash   int
}

// Reconcile derives the view for a folder selection from the full email
// collection. Filtering, search and ordering are pure: the input slice is
// never modified.
func Reconcile(emails []models.EmailRecord, folder, query string) FolderView {
	view := FolderView{Folder: folder, Query: query}

	q := strings.ToLower(strings.TrimSpace(query))
	for _, e := range emails {
		if !matchesFolder(&e, folder) {
			continue
		}
		if q != "" && !matchesQuery(&e, q) {
			continue
		}
		view.Emails = append(view.Emails, e)
	}

	// Most recent first; equal timestamps keep their input order.
	sort.SliceStable(view.Emails, func(i, j int) bool {
		return view.Emails[i].Timestamp.After(view.Emails[j].Timestamp)
	})

	return view
}

// CountFolders computes the sidebar counters from the full collection.
func CountFolders(emails []models.EmailRecord) Counts {
	var counts Counts
	for _, e := range emails {
		if matchesFolder(&e, models.FolderInbox) && !e.Read {
			counts.Inbox++
		}
		if e.Starred {
			counts.Starred++
		}
		switch e.Folder {
		case models.FolderDrafts:
			counts.Drafts++
		case models.FolderSpam:
			counts.Spam++
		case models.FolderTrash:
			counts.Trash++
		}
	}
	return counts
}

// matchesFolder implements the folder membership rules. An unknown folder
// value matches nothing, yielding an empty view rather than an error.
func matchesFolder(e *models.EmailRecord, folder string) bool {
	switch folder {
	case models.FolderInbox:
		return e.Folder == models.FolderInbox || e.Folder == ""
	case "starred":
		// Cross-folder view: starred records appear here regardless of folder.
		return e.Starred
	case models.FolderSent, models.FolderDrafts, models.FolderSpam, models.FolderTrash:
		return e.Folder == folder
	}

	if strings.HasPrefix(folder, LabelPrefix) {
		return e.HasLabel(strings.TrimPrefix(folder, LabelPrefix))
	}

	return false
}

// matchesQuery reports whether the lowercase query is a substring of the
// subject, sender, body or preview. Empty fields never match.
func matchesQuery(e *models.EmailRecord, q string) bool {
	for _, field := range []string{e.Subject, e.From, e.Body, e.Preview} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
