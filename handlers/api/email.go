package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"vmail/models"
	"vmail/storage"
	"vmail/utils"
)

const defaultListLimit = 50

// EmailHandler serves list/get/delete and the partial metadata updates.
type EmailHandler struct {
	emails *storage.EmailStore
	blobs  *storage.BlobStore
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emails *storage.EmailStore, blobs *storage.BlobStore) *EmailHandler {
	return &EmailHandler{
		emails: emails,
		blobs:  blobs,
	}
}

// HandleList returns a user's emails for a folder, most recent first.
func (h *EmailHandler) HandleList(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	folder := c.Query("folder", models.FolderInbox)
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.emails.ListByFolder(userID, folder, limit)
	if err != nil {
		return utils.InternalServerError("Error listing emails", err)
	}
	if records == nil {
		records = []models.EmailRecord{}
	}

	return c.JSON(fiber.Map{
		"emails": records,
		"count":  len(records),
	})
}

// HandleGet returns a single email with its full body and attachments
// joined in from blob storage.
func (h *EmailHandler) HandleGet(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	rec, err := h.load(c.Params("id"), userID)
	if err != nil {
		return err
	}

	if rec.StorageKey != "" {
		content, err := h.blobs.Get(rec.StorageKey)
		if err != nil {
			// Metadata without content is still worth returning; the
			// record is served with an empty body.
			utils.Log.Error("Error reading blob %s: %v", rec.StorageKey, err)
		} else {
			rec.Body = content.Body
			rec.Attachments = content.Attachments
		}
	}

	return c.JSON(rec)
}

// HandleDelete permanently removes an email's metadata and stored content.
func (h *EmailHandler) HandleDelete(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	rec, err := h.load(c.Params("id"), userID)
	if err != nil {
		return err
	}

	if rec.StorageKey != "" {
		if err := h.blobs.Delete(rec.StorageKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
			utils.Log.Error("Error deleting blob %s: %v", rec.StorageKey, err)
		}
	}

	if err := h.emails.Delete(rec.ID); err != nil {
		return utils.InternalServerError("Error deleting email", err)
	}

	utils.Log.Info("Email deleted: id=%s user=%s", rec.ID, userID)

	return c.JSON(fiber.Map{
		"message": "Email permanently deleted",
	})
}

// HandleMarkRead flips the read flag; no other field is touched.
func (h *EmailHandler) HandleMarkRead(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	rec, err := h.load(c.Params("id"), userID)
	if err != nil {
		return err
	}

	if err := h.emails.SetRead(rec.ID, true); err != nil {
		return utils.InternalServerError("Error marking email as read", err)
	}

	return c.JSON(fiber.Map{
		"message": "Email marked as read",
	})
}

// HandleMarkStarred sets the starred flag; no other field is touched.
func (h *EmailHandler) HandleMarkStarred(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Starred *bool `json:"starred"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.BadRequestError("Invalid request", err)
	}
	starred := true
	if req.Starred != nil {
		starred = *req.Starred
	}

	rec, err := h.load(c.Params("id"), userID)
	if err != nil {
		return err
	}

	if err := h.emails.SetStarred(rec.ID, starred); err != nil {
		return utils.InternalServerError("Error updating starred status", err)
	}

	return c.JSON(fiber.Map{
		"message": "Email starred status updated",
		"emailId": rec.ID,
		"starred": starred,
	})
}

// load fetches a record and enforces ownership.
func (h *EmailHandler) load(id, userID string) (*models.EmailRecord, error) {
	if id == "" {
		return nil, utils.BadRequestError("Email ID required", nil)
	}

	rec, err := h.emails.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, utils.NotFoundError("Email not found", nil)
		}
		return nil, utils.InternalServerError("Error loading email", err)
	}

	if rec.UserID != userID {
		return nil, utils.ForbiddenError("Access denied", nil)
	}

	return rec, nil
}
