package mailbox

import "vmail/models"

// Store is the single owned mutable email collection of an active session.
// It is written only by gateway response handlers and read only for view
// derivation; all access happens on one cooperative caller, so there is
// no locking.
type Store struct {
	emails []models.EmailRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a freshly fetched collection.
func (s *Store) Replace(emails []models.EmailRecord) {
	s.emails = append(s.emails[:0:0], emails...)
}

// Upsert folds a single record into the collection, replacing any record
// with the same id.
func (s *Store) Upsert(rec models.EmailRecord) {
	for i := range s.emails {
		if s.emails[i].ID == rec.ID {
			s.emails[i] = rec
			return
		}
	}
	s.emails = append(s.emails, rec)
}

// Remove drops the record with the given id, if present.
func (s *Store) Remove(id string) {
	for i := range s.emails {
		if s.emails[i].ID == id {
			s.emails = append(s.emails[:i], s.emails[i+1:]...)
			return
		}
	}
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (models.EmailRecord, bool) {
	for i := range s.emails {
		if s.emails[i].ID == id {
			return s.emails[i], true
		}
	}
	return models.EmailRecord{}, false
}

// MarkRead flips the read flag of one record.
func (s *Store) MarkRead(id string) {
	for i := range s.emails {
		if s.emails[i].ID == id {
			s.emails[i].Read = true
			return
		}
	}
}

// SetStarred sets the starred flag of one record.
func (s *Store) SetStarred(id string, starred bool) {
	for i := range s.emails {
		if s.emails[i].ID == id {
			s.emails[i].Starred = starred
			return
		}
	}
}

// Len returns the number of records held.
func (s *Store) Len() int {
	return len(s.emails)
}

// View derives the folder view for the current collection.
func (s *Store) View(folder, query string) FolderView {
	return Reconcile(s.emails, folder, query)
}

// Counts derives the folder counters for the current collection.
func (s *Store) Counts() Counts {
	return CountFolders(s.emails)
}
