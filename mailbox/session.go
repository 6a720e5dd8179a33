package mailbox

import (
	"context"
	"errors"

	"vmail/client"
	"vmail/models"
)

// Gateway is the slice of the mail gateway client the mailbox needs.
type Gateway interface {
	ListEmails(ctx context.Context, folder string, limit int) ([]models.EmailRecord, error)
	GetEmail(ctx context.Context, id string) (*models.EmailRecord, error)
	DeleteEmail(ctx context.Context, id string) error
	MarkAsRead(ctx context.Context, id string) error
	MarkAsStarred(ctx context.Context, id string, starred bool) error
}

// Session ties a gateway to the owned email store and keeps the active
// folder selection. Operations are sequenced by the caller; the session
// provides no implicit ordering across independent calls. A reload right
// after a send observes the new record only if the send was awaited first.
type Session struct {
	gateway  Gateway
	store    *Store
	folder   string
	query    string
	limit    int
	degraded bool
}

// NewSession creates a session starting in the inbox.
func NewSession(gateway Gateway) *Session {
	return &Session{
		gateway: gateway,
		store:   NewStore(),
		folder:  models.FolderInbox,
		limit:   50,
	}
}

// Refresh reloads the active folder from the backend. On failure the
// store is filled with the canned demo collection and the session is
// flagged degraded; the error is still returned so the failure can be
// shown rather than hidden behind the demo data.
func (s *Session) Refresh(ctx context.Context) error {
	emails, err := s.gateway.ListEmails(ctx, s.folder, s.limit)
	if err != nil {
		s.store.Replace(DemoEmails())
		s.degraded = true
		return err
	}

	s.store.Replace(emails)
	s.degraded = false
	return nil
}

// SelectFolder changes the active folder. The caller refreshes afterwards.
func (s *Session) SelectFolder(folder string) {
	s.folder = folder
}

// Search sets the active search query. Filtering is local; no request is
// made.
func (s *Session) Search(query string) {
	s.query = query
}

// View derives the current folder view from the held collection.
func (s *Session) View() FolderView {
	return s.store.View(s.folder, s.query)
}

// Counts derives the current folder counters.
func (s *Session) Counts() Counts {
	return s.store.Counts()
}

// Degraded reports whether the session is showing demo data after a
// failed refresh.
func (s *Session) Degraded() bool {
	return s.degraded
}

// Folder returns the active folder selection.
func (s *Session) Folder() string {
	return s.folder
}

// Open fetches the full email and folds it back into the collection.
func (s *Session) Open(ctx context.Context, id string) (*models.EmailRecord, error) {
	rec, err := s.gateway.GetEmail(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store.Upsert(*rec)
	return rec, nil
}

// Delete removes an email on the backend and from the held collection.
// An already-absent email is treated as success.
func (s *Session) Delete(ctx context.Context, id string) error {
	err := s.gateway.DeleteEmail(ctx, id)
	var notFound *client.NotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return err
	}

	s.store.Remove(id)
	return nil
}

// MarkRead marks an email read on the backend, then updates the held
// record so derived counts stay consistent.
func (s *Session) MarkRead(ctx context.Context, id string) error {
	if err := s.gateway.MarkAsRead(ctx, id); err != nil {
		return err
	}

	s.store.MarkRead(id)
	return nil
}

// Star updates the starred flag on the backend and in the held record.
func (s *Session) Star(ctx context.Context, id string, starred bool) error {
	if err := s.gateway.MarkAsStarred(ctx, id, starred); err != nil {
		return err
	}

	s.store.SetStarred(id, starred)
	return nil
}
