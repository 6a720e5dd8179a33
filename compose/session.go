package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vmail/client"
	"vmail/models"
)

// State is the lifecycle state of a compose session.
type State int

const (
	StateEditing State = iota
	StateSending
	StateSavingDraft
	StateSent
	StateSaved
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSending:
		return "sending"
	case StateSavingDraft:
		return "saving"
	case StateSent:
		return "sent"
	case StateSaved:
		return "saved"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// ErrNotEditing is returned when an operation requires the session to be
// in the editing state.
var ErrNotEditing = errors.New("compose session is not editable")

// ValidationError reports a compose session that is not ready to leave
// the editing state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Gateway is the slice of the mail gateway client a compose session needs.
type Gateway interface {
	SendEmail(ctx context.Context, msg models.OutgoingEmail) (*client.SendResult, error)
	SaveDraft(ctx context.Context, msg models.OutgoingEmail, draftID string) (*client.DraftResult, error)
}

// Session holds the transient state of an in-progress message. Recipient
// fields are comma-separated strings as typed by the user and are split
// only when a request is built. A session ends sent, saved or discarded;
// a failed send or save returns it to editing with every field intact.
type Session struct {
	To      string
	Cc      string
	Bcc     string
	Subject string
	Body    string

	attachments []models.Attachment
	state       State
	draftID     string
	lastErr     error
	replyTo     *models.EmailRecord
}

// New creates a blank compose session.
func New() *Session {
	return &Session{state: StateEditing}
}

// NewReply creates a session pre-filled from the message being replied
// to. The original record is read-only input and is never modified.
func NewReply(original *models.EmailRecord) *Session {
	return &Session{
		state:   StateEditing,
		To:      original.From,
		Subject: "Re: " + original.Subject,
		replyTo: original,
	}
}

// NewForward creates a session pre-filled for forwarding: the subject is
// carried over, recipients are left for the user to fill in.
func NewForward(original *models.EmailRecord) *Session {
	return &Session{
		state:   StateEditing,
		Subject: "Fwd: " + original.Subject,
		Body:    original.Body,
		replyTo: original,
	}
}

// EditDraft creates a session from a stored draft. Saving it again
// overwrites the same draft.
func EditDraft(draft *models.EmailRecord) *Session {
	return &Session{
		state:       StateEditing,
		To:          strings.Join(draft.To, ", "),
		Cc:          strings.Join(draft.Cc, ", "),
		Bcc:         strings.Join(draft.Bcc, ", "),
		Subject:     draft.Subject,
		Body:        draft.Body,
		attachments: append([]models.Attachment(nil), draft.Attachments...),
		draftID:     draft.ID,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Err returns the failure that sent the session back to editing, if any.
func (s *Session) Err() error {
	return s.lastErr
}

// DraftID returns the id of the backing draft, once one exists.
func (s *Session) DraftID() string {
	return s.draftID
}

// ReplyContext returns the record this session replies to or forwards.
func (s *Session) ReplyContext() *models.EmailRecord {
	return s.replyTo
}

// Attachments returns the attachments added so far.
func (s *Session) Attachments() []models.Attachment {
	return s.attachments
}

// AttachFile encodes a selected file and appends it. The transform is the
// attachment codec; nothing is uploaded until the session is sent or
// saved.
func (s *Session) AttachFile(filename, contentType string, data []byte) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	s.attachments = append(s.attachments, models.EncodeAttachment(filename, contentType, data))
	return nil
}

// RemoveAttachment drops the attachment at the given index.
func (s *Session) RemoveAttachment(index int) error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	if index < 0 || index >= len(s.attachments) {
		return fmt.Errorf("no attachment at index %d", index)
	}
	s.attachments = append(s.attachments[:index], s.attachments[index+1:]...)
	return nil
}

// Validate checks whether the session may leave editing for sending:
// a recipient and a subject are required.
func (s *Session) Validate() error {
	if len(splitRecipients(s.To)) == 0 {
		return &ValidationError{Reason: "recipient is required"}
	}
	if strings.TrimSpace(s.Subject) == "" {
		return &ValidationError{Reason: "subject is required"}
	}
	return nil
}

// Send validates the session and dispatches it through the gateway. On
// success the session is terminal in StateSent. On failure it returns to
// editing with all fields intact and the reason available via Err; there
// is no automatic retry.
func (s *Session) Send(ctx context.Context, gateway Gateway) (*client.SendResult, error) {
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	s.state = StateSending
	result, err := gateway.SendEmail(ctx, s.outgoing())
	if err != nil {
		s.state = StateEditing
		s.lastErr = err
		return nil, err
	}

	s.state = StateSent
	s.lastErr = nil
	return result, nil
}

// SaveDraft persists the session as a draft. Drafts only need a recipient
// or some content; an entirely blank session is rejected. Saving an
// already-saved draft overwrites it in place.
func (s *Session) SaveDraft(ctx context.Context, gateway Gateway) (*client.DraftResult, error) {
	if s.state != StateEditing {
		return nil, ErrNotEditing
	}
	if len(splitRecipients(s.To)) == 0 && strings.TrimSpace(s.Subject) == "" && strings.TrimSpace(s.Body) == "" {
		return nil, &ValidationError{Reason: "nothing to save"}
	}

	s.state = StateSavingDraft
	result, err := gateway.SaveDraft(ctx, s.outgoing(), s.draftID)
	if err != nil {
		s.state = StateEditing
		s.lastErr = err
		return nil, err
	}

	s.state = StateSaved
	s.draftID = result.DraftID
	s.lastErr = nil
	return result, nil
}

// Discard ends the session without any network call or record.
func (s *Session) Discard() {
	if s.state == StateEditing {
		s.state = StateDiscarded
	}
}

// outgoing builds the wire shape from the edited fields.
func (s *Session) outgoing() models.OutgoingEmail {
	return models.OutgoingEmail{
		To:          splitRecipients(s.To),
		Cc:          splitRecipients(s.Cc),
		Bcc:         splitRecipients(s.Bcc),
		Subject:     s.Subject,
		Body:        s.Body,
		Attachments: s.attachments,
	}
}

// splitRecipients turns a comma-separated recipient field into a list,
// dropping empty entries.
func splitRecipients(field string) []string {
	var out []string
	for _, part := range strings.Split(field, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
