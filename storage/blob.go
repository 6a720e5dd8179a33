package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vmail/models"
)

// EmailContent is the full body payload kept in blob storage: everything
// too large for the metadata record, written once per email.
type EmailContent struct {
	From        string              `json:"from"`
	To          []string            `json:"to"`
	Cc          []string            `json:"cc"`
	Bcc         []string            `json:"bcc"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	Attachments []models.Attachment `json:"attachments"`
	Timestamp   time.Time           `json:"timestamp"`
	MessageID   string              `json:"messageId,omitempty"`
}

// BlobStore persists email content as one JSON blob per email under a
// storage key. The key layout mirrors the metadata's StorageKey field.
type BlobStore struct {
	baseDir string
}

// NewBlobStore creates a blob store rooted at baseDir.
func NewBlobStore(baseDir string) *BlobStore {
	return &BlobStore{baseDir: baseDir}
}

// EmailKey returns the storage key for a sent or received email.
func EmailKey(userID, emailID string) string {
	return filepath.Join("emails", userID, emailID+".json")
}

// DraftKey returns the storage key for a draft.
func DraftKey(userID, emailID string) string {
	return filepath.Join("drafts", userID, emailID+".json")
}

// Put writes the content blob for the given key, replacing any previous
// version.
func (bs *BlobStore) Put(key string, content *EmailContent) error {
	path := filepath.Join(bs.baseDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal blob: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	return nil
}

// Get reads the content blob for the given key.
func (bs *BlobStore) Get(key string) (*EmailContent, error) {
	data, err := os.ReadFile(filepath.Join(bs.baseDir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}

	var content EmailContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blob: %w", err)
	}

	return &content, nil
}

// Delete removes the content blob for the given key.
func (bs *BlobStore) Delete(key string) error {
	if err := os.Remove(filepath.Join(bs.baseDir, key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}

	return nil
}
