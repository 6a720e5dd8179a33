package models

import "time"

// Folder names recognized by the system. Folder is the primary,
// mutually-exclusive categorization of an email; labels are orthogonal tags.
const (
	FolderInbox  = "inbox"
	FolderSent   = "sent"
	FolderDrafts = "drafts"
	FolderSpam   = "spam"
	FolderTrash  = "trash"
)

// EmailRecord is the canonical email/draft entity shared between the client
// and the backend. List responses carry metadata only; Body and Attachments
// are joined in from blob storage on single-email fetches.
type EmailRecord struct {
	ID             string       `json:"emailId"`
	UserID         string       `json:"userId,omitempty"`
	From           string       `json:"from"`
	To             []string     `json:"to"`
	Cc             []string     `json:"cc,omitempty"`
	Bcc            []string     `json:"bcc,omitempty"`
	Subject        string       `json:"subject"`
	Body           string       `json:"body,omitempty"`
	Preview        string       `json:"preview"`
	Timestamp      time.Time    `json:"timestamp"`
	Folder         string       `json:"folder"`
	Read           bool         `json:"read"`
	Starred        bool         `json:"starred"`
	Labels         []string     `json:"labels,omitempty"`
	HasAttachments bool         `json:"hasAttachments"`
	Attachments    []Attachment `json:"attachments,omitempty"`

	// Backend bookkeeping, never interpreted by the client.
	StorageKey string `json:"storageKey,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
}

// DisplaySubject returns the subject or a placeholder for blank subjects.
func (e *EmailRecord) DisplaySubject() string {
	if e.Subject == "" {
		return "(no subject)"
	}
	return e.Subject
}

// HasLabel reports whether the record carries the given label.
func (e *EmailRecord) HasLabel(name string) bool {
	for _, l := range e.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// OutgoingEmail is the wire shape of a send or save-draft request body.
type OutgoingEmail struct {
	To          []string     `json:"to"`
	Cc          []string     `json:"cc"`
	Bcc         []string     `json:"bcc"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Attachments []Attachment `json:"attachments"`
}
