package storage

import (
	"encoding/json"
	"errors"
	"sort"

	"go.etcd.io/bbolt"

	"vmail/models"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("email not found")

// EmailStore persists email metadata records in BoltDB, one record per
// email keyed by its id. Full bodies and attachments live in the blob
// store; records here reference them through StorageKey.
type EmailStore struct {
	db *bbolt.DB
}

// NewEmailStore creates an email store over an initialized database.
func NewEmailStore(db *bbolt.DB) *EmailStore {
	return &EmailStore{db: db}
}

// Put creates or replaces the metadata record for rec.ID.
func (s *EmailStore) Put(rec *models.EmailRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(emailBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put([]byte(rec.ID), data)
	})
}

// Get retrieves a metadata record by id.
func (s *EmailStore) Get(id string) (*models.EmailRecord, error) {
	var rec models.EmailRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(emailBucket))
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}

		return json.Unmarshal(data, &rec)
	})

	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Delete permanently removes a metadata record.
func (s *EmailStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(emailBucket))
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

// ListByFolder returns a user's records for a folder, most recent first,
// capped at limit. The special folder "starred" aggregates starred records
// across all folders.
func (s *EmailStore) ListByFolder(userID, folder string, limit int) ([]models.EmailRecord, error) {
	var records []models.EmailRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(emailBucket))

		return b.ForEach(func(k, v []byte) error {
			var rec models.EmailRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}

			if rec.UserID != userID {
				return nil
			}

			if folder == "starred" {
				if !rec.Starred {
					return nil
				}
			} else if rec.Folder != folder {
				return nil
			}

			records = append(records, rec)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// SetRead updates only the read flag of a record.
func (s *EmailStore) SetRead(id string, read bool) error {
	return s.update(id, func(rec *models.EmailRecord) {
		rec.Read = read
	})
}

// SetStarred updates only the starred flag of a record.
func (s *EmailStore) SetStarred(id string, starred bool) error {
	return s.update(id, func(rec *models.EmailRecord) {
		rec.Starred = starred
	})
}

// update applies a partial mutation to a single record. Unrelated fields
// are carried over untouched.
func (s *EmailStore) update(id string, mutate func(*models.EmailRecord)) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(emailBucket))

		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}

		var rec models.EmailRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}

		mutate(&rec)

		updated, err := json.Marshal(&rec)
		if err != nil {
			return err
		}

		return b.Put([]byte(id), updated)
	})
}
