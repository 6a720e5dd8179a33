package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"vmail/models"
	"vmail/storage"
	"vmail/utils"
)

// DraftHandler handles draft saving
type DraftHandler struct {
	emails *storage.EmailStore
	blobs  *storage.BlobStore
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(emails *storage.EmailStore, blobs *storage.BlobStore) *DraftHandler {
	return &DraftHandler{
		emails: emails,
		blobs:  blobs,
	}
}

// HandleSaveDraft creates a draft record or overwrites an existing one in
// place when draftId is provided. Drafts are not validated; a draft may be
// arbitrarily incomplete.
func (h *DraftHandler) HandleSaveDraft(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		models.OutgoingEmail
		DraftID string `json:"draftId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	// Use provided draftId or generate a new one
	emailID := req.DraftID
	if emailID == "" {
		emailID = fmt.Sprintf("%s-draft-%d", userID, time.Now().UnixMilli())
	}
	timestamp := time.Now().UTC()

	email := userEmail(c)
	body := utils.SanitizeHTML(req.Body)

	storageKey := storage.DraftKey(userID, emailID)
	if err := h.blobs.Put(storageKey, &storage.EmailContent{
		From:        email,
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		Body:        body,
		Attachments: req.Attachments,
		Timestamp:   timestamp,
	}); err != nil {
		return utils.InternalServerError("Error saving draft", err)
	}

	rec := &models.EmailRecord{
		ID:             emailID,
		UserID:         userID,
		From:           email,
		To:             req.To,
		Cc:             req.Cc,
		Bcc:            req.Bcc,
		Subject:        req.Subject,
		Preview:        utils.MakePreview(body),
		Timestamp:      timestamp,
		Folder:         models.FolderDrafts,
		Read:           true,
		Starred:        false,
		HasAttachments: len(req.Attachments) > 0,
		StorageKey:     storageKey,
	}
	if err := h.emails.Put(rec); err != nil {
		return utils.InternalServerError("Error saving draft", err)
	}

	utils.Log.Info("Draft saved: id=%s user=%s", emailID, userID)

	return c.JSON(fiber.Map{
		"message": "Draft saved successfully",
		"emailId": emailID,
		"draftId": emailID,
	})
}
