package models

import (
	"encoding/base64"
	"fmt"
)

// Attachment is a file attached to an email. Data holds the base64-encoded
// payload so the whole record stays JSON-safe on the wire and in storage.
// Attachments are never mutated after creation.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"`
	Size        int64  `json:"size"`
}

// DecodeError reports a malformed attachment payload. It is scoped to the
// single attachment; callers are expected to keep processing the rest.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("attachment %q: invalid encoding: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeAttachment converts raw file bytes into a transport-safe attachment.
// The transform is deterministic and reversible via DecodeAttachment.
func EncodeAttachment(filename, contentType string, data []byte) Attachment {
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        base64.StdEncoding.EncodeToString(data),
		Size:        int64(len(data)),
	}
}

// DecodeAttachment recovers the original file bytes. It fails with a
// *DecodeError when the payload is not valid base64.
func DecodeAttachment(att Attachment) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(att.Data)
	if err != nil {
		return nil, &DecodeError{Filename: att.Filename, Err: err}
	}
	return data, nil
}
