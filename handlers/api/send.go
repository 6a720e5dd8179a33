package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"vmail/models"
	"vmail/provider"
	"vmail/storage"
	"vmail/utils"
)

// SendHandler handles email sending
type SendHandler struct {
	emails *storage.EmailStore
	blobs  *storage.BlobStore
	mailer provider.Mailer
}

// NewSendHandler creates a new send handler
func NewSendHandler(emails *storage.EmailStore, blobs *storage.BlobStore, mailer provider.Mailer) *SendHandler {
	return &SendHandler{
		emails: emails,
		blobs:  blobs,
		mailer: mailer,
	}
}

// HandleSend dispatches a message through the transport provider and then
// persists the resulting record into the sent folder. The order is
// send-then-persist: a provider rejection creates no record, while a
// persistence failure after a successful send leaves a delivered message
// with no stored record. That window is surfaced to the caller, never
// masked.
func (h *SendHandler) HandleSend(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.OutgoingEmail
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	// Validate required fields
	if len(req.To) == 0 || req.Subject == "" || req.Body == "" {
		return utils.BadRequestError("Missing required fields", nil)
	}

	email := userEmail(c)
	body := utils.SanitizeHTML(req.Body)

	emailID := fmt.Sprintf("%s-%d", userID, time.Now().UnixMilli())
	timestamp := time.Now().UTC()

	messageID, err := h.mailer.Send(&provider.Message{
		FromName:    email,
		ReplyTo:     email,
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		HTMLBody:    body,
		Attachments: req.Attachments,
	})
	if err != nil {
		return utils.BadGatewayError("Mail provider rejected the message", err)
	}

	storageKey := storage.EmailKey(userID, emailID)
	if err := h.blobs.Put(storageKey, &storage.EmailContent{
		From:        email,
		To:          req.To,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		Subject:     req.Subject,
		Body:        body,
		Attachments: req.Attachments,
		Timestamp:   timestamp,
		MessageID:   messageID,
	}); err != nil {
		utils.Log.Error("Message %s dispatched but content persist failed: %v", messageID, err)
		return utils.InternalServerError("Email was sent but could not be recorded", err)
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
		Folder:         models.FolderSent,
		Read:           true,
		HasAttachments: len(req.Attachments) > 0,
		StorageKey:     storageKey,
		MessageID:      messageID,
	}
	if err := h.emails.Put(rec); err != nil {
		utils.Log.Error("Message %s dispatched but metadata persist failed: %v", messageID, err)
		return utils.InternalServerError("Email was sent but could not be recorded", err)
	}

	utils.Log.Info("Email sent: id=%s user=%s messageId=%s", emailID, userID, messageID)

	return c.JSON(fiber.Map{
		"message":   "Email sent successfully",
		"emailId":   emailID,
		"messageId": messageID,
	})
}
