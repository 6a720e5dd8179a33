package api

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/gofiber/fiber/v2"

	"vmail/models"
	"vmail/storage"
	"vmail/utils"
)

// ReceiveHandler ingests raw inbound messages handed over by the delivery
// pipeline and files them into the recipient's inbox. The caller resolves
// the recipient account and passes it as the userId query parameter.
type ReceiveHandler struct {
	emails *storage.EmailStore
	blobs  *storage.BlobStore
}

// NewReceiveHandler creates a new receive handler
func NewReceiveHandler(emails *storage.EmailStore, blobs *storage.BlobStore) *ReceiveHandler {
	return &ReceiveHandler{
		emails: emails,
		blobs:  blobs,
	}
}

// HandleReceive parses an RFC822 message from the request body and stores
// it as an unread inbox record for the target user.
func (h *ReceiveHandler) HandleReceive(c *fiber.Ctx) error {
	targetUser := c.Query("userId")
	if targetUser == "" {
		return utils.BadRequestError("userId query parameter required", nil)
	}

	raw := c.Body()
	if len(raw) == 0 {
		return utils.BadRequestError("Empty message body", nil)
	}

	parsed, err := parseRawMessage(raw)
	if err != nil {
		return utils.BadRequestError("Failed to parse message", err)
	}

	emailID := fmt.Sprintf("%s-%d", targetUser, time.Now().UnixMilli())
	timestamp := parsed.timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	body := utils.SanitizeHTML(parsed.body)

	storageKey := storage.EmailKey(targetUser, emailID)
	if err := h.blobs.Put(storageKey, &storage.EmailContent{
		From:        parsed.from,
		To:          parsed.to,
		Cc:          parsed.cc,
		Subject:     parsed.subject,
		Body:        body,
		Attachments: parsed.attachments,
		Timestamp:   timestamp,
		MessageID:   parsed.messageID,
	}); err != nil {
		return utils.InternalServerError("Error storing message content", err)
	}

	rec := &models.EmailRecord{
		ID:             emailID,
		UserID:         targetUser,
		From:           parsed.from,
		To:             parsed.to,
		Cc:             parsed.cc,
		Subject:        parsed.subject,
		Preview:        utils.MakePreview(body),
		Timestamp:      timestamp,
		Folder:         models.FolderInbox,
		Read:           false,
		HasAttachments: len(parsed.attachments) > 0,
		StorageKey:     storageKey,
		MessageID:      parsed.messageID,
	}
	if err := h.emails.Put(rec); err != nil {
		return utils.InternalServerError("Error storing message", err)
	}

	utils.Log.Info("Email received: id=%s user=%s from=%s", emailID, targetUser, parsed.from)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Email received",
		"emailId": emailID,
	})
}

type parsedMessage struct {
	from        string
	to          []string
	cc          []string
	subject     string
	body        string
	messageID   string
	timestamp   time.Time
	attachments []models.Attachment
}

// parseRawMessage extracts the fields we store from a raw RFC822 message.
// A plain-text part is preferred for the body; HTML is the fallback.
func parseRawMessage(raw []byte) (*parsedMessage, error) {
	reader, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	msg := &parsedMessage{}

	if subject, err := reader.Header.Subject(); err == nil {
		msg.subject = subject
	}
	if list, err := reader.Header.AddressList("From"); err == nil && len(list) > 0 {
		msg.from = list[0].Address
	}
	if list, err := reader.Header.AddressList("To"); err == nil {
		for _, addr := range list {
			msg.to = append(msg.to, addr.Address)
		}
	}
	if list, err := reader.Header.AddressList("Cc"); err == nil {
		for _, addr := range list {
			msg.cc = append(msg.cc, addr.Address)
		}
	}
	if id, err := reader.Header.MessageID(); err == nil && id != "" {
		msg.messageID = "<" + id + ">"
	}
	if date, err := reader.Header.Date(); err == nil {
		msg.timestamp = date.UTC()
	}

	var htmlBody string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return msg, err
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := header.ContentType()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain") && msg.body == "":
				msg.body = string(data)
			case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
				htmlBody = string(data)
			}
		case *mail.AttachmentHeader:
			filename, _ := header.Filename()
			contentType, _, _ := header.ContentType()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			msg.attachments = append(msg.attachments, models.EncodeAttachment(filename, contentType, data))
		}
	}

	if msg.body == "" {
		msg.body = htmlBody
	}

	return msg, nil
}
