package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmail/client"
	"vmail/models"
)

// fakeGateway records outgoing requests and fails on demand.
type fakeGateway struct {
	sendErr error
	saveErr error

	sent   []models.OutgoingEmail
	saved  []models.OutgoingEmail
	draKey []string
}

func (f *fakeGateway) SendEmail(ctx context.Context, msg models.OutgoingEmail) (*client.SendResult, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, msg)
	return &client.SendResult{EmailID: "u1-100", MessageID: "<m1@test>"}, nil
}

func (f *fakeGateway) SaveDraft(ctx context.Context, msg models.OutgoingEmail, draftID string) (*client.DraftResult, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, msg)
	if draftID == "" {
		draftID = "u1-draft-100"
	}
	f.draKey = append(f.draKey, draftID)
	return &client.DraftResult{EmailID: draftID, DraftID: draftID}, nil
}

func TestSend_EmptyRecipientNeverLeavesEditing(t *testing.T) {
	gw := &fakeGateway{}
	s := New()
	s.Subject = "x"
	s.Body = "y"

	_, err := s.Send(context.Background(), gw)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, StateEditing, s.State())

	// Validation fails before any network call is made
	assert.Empty(t, gw.sent)
}

func TestSend_RequiresSubject(t *testing.T) {
	gw := &fakeGateway{}
	s := New()
	s.To = "a@example.com"
	s.Body = "body without subject"

	_, err := s.Send(context.Background(), gw)

	require.Error(t, err)
	assert.Empty(t, gw.sent)
	assert.Equal(t, StateEditing, s.State())
}

func TestSend_Success(t *testing.T) {
	gw := &fakeGateway{}
	s := New()
	s.To = "a@example.com, b@example.com"
	s.Cc = "c@example.com"
	s.Subject = "Hello"
	s.Body = "<p>Hi</p>"

	result, err := s.Send(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, "u1-100", result.EmailID)
	assert.Equal(t, StateSent, s.State())

	require.Len(t, gw.sent, 1)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gw.sent[0].To)
	assert.Equal(t, []string{"c@example.com"}, gw.sent[0].Cc)

	// A sent session is immutable
	_, err = s.Send(context.Background(), gw)
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.ErrorIs(t, s.AttachFile("late.txt", "text/plain", nil), ErrNotEditing)
}

func TestSend_FailureReturnsToEditingWithFieldsIntact(t *testing.T) {
	gw := &fakeGateway{sendErr: &client.DeliveryError{Reason: "recipient rejected"}}
	s := New()
	s.To = "bad@example.com"
	s.Subject = "Hello"
	s.Body = "content"
	require.NoError(t, s.AttachFile("notes.txt", "text/plain", []byte("abc")))

	_, err := s.Send(context.Background(), gw)
	require.Error(t, err)

	var deliveryErr *client.DeliveryError
	assert.True(t, errors.As(err, &deliveryErr))

	// No data loss, failure reason surfaced
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "bad@example.com", s.To)
	assert.Equal(t, "Hello", s.Subject)
	assert.Equal(t, "content", s.Body)
	assert.Len(t, s.Attachments(), 1)
	assert.Equal(t, err, s.Err())
}

func TestSaveDraft_RejectsBlankSession(t *testing.T) {
	gw := &fakeGateway{}
	s := New()

	_, err := s.SaveDraft(context.Background(), gw)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Empty(t, gw.saved)
}

func TestSaveDraft_AllowsPartialContent(t *testing.T) {
	gw := &fakeGateway{}
	s := New()
	s.Body = "half-written thought"

	result, err := s.SaveDraft(context.Background(), gw)
	require.NoError(t, err)
	assert.Equal(t, StateSaved, s.State())
	assert.Equal(t, result.DraftID, s.DraftID())
}

func TestSaveDraft_FailureKeepsFields(t *testing.T) {
	gw := &fakeGateway{saveErr: &client.NetworkError{Err: errors.New("timeout")}}
	s := New()
	s.To = "a@example.com"
	s.Subject = "WIP"

	_, err := s.SaveDraft(context.Background(), gw)
	require.Error(t, err)
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "WIP", s.Subject)
}

func TestEditDraft_OverwritesSameDraft(t *testing.T) {
	gw := &fakeGateway{}

	draft := &models.EmailRecord{
		ID:      "u1-draft-42",
		To:      []string{"a@example.com"},
		Subject: "First version",
		Folder:  models.FolderDrafts,
	}

	s := EditDraft(draft)
	s.Subject = "Second version"

	result, err := s.SaveDraft(context.Background(), gw)
	require.NoError(t, err)

	// Saved under the original draft id, not a new one
	assert.Equal(t, "u1-draft-42", result.DraftID)
	assert.Equal(t, []string{"u1-draft-42"}, gw.draKey)
	assert.Equal(t, "Second version", gw.saved[0].Subject)
}

func TestNewReply_Prefill(t *testing.T) {
	original := &models.EmailRecord{
		ID:      "orig-1",
		From:    "sender@example.com",
		Subject: "Question",
		Folder:  models.FolderInbox,
	}

	s := NewReply(original)

	assert.Equal(t, "sender@example.com", s.To)
	assert.Equal(t, "Re: Question", s.Subject)
	assert.Same(t, original, s.ReplyContext())

	// The original record is read-only input
	assert.Equal(t, "Question", original.Subject)
	assert.Equal(t, models.FolderInbox, original.Folder)
}

func TestNewForward_Prefill(t *testing.T) {
	original := &models.EmailRecord{Subject: "Itinerary", Body: "<p>Flight details</p>"}

	s := NewForward(original)

	assert.Equal(t, "Fwd: Itinerary", s.Subject)
	assert.Equal(t, "<p>Flight details</p>", s.Body)
	assert.Empty(t, s.To)
}

func TestAttachments_AddAndRemove(t *testing.T) {
	s := New()

	require.NoError(t, s.AttachFile("a.txt", "text/plain", []byte("aaa")))
	require.NoError(t, s.AttachFile("b.txt", "text/plain", []byte("bbb")))
	require.Len(t, s.Attachments(), 2)

	require.NoError(t, s.RemoveAttachment(0))
	require.Len(t, s.Attachments(), 1)
	assert.Equal(t, "b.txt", s.Attachments()[0].Filename)

	assert.Error(t, s.RemoveAttachment(5))
	assert.Error(t, s.RemoveAttachment(-1))
}

func TestDiscard(t *testing.T) {
	s := New()
	s.To = "a@example.com"

	s.Discard()
	assert.Equal(t, StateDiscarded, s.State())

	_, err := s.Send(context.Background(), &fakeGateway{})
	assert.ErrorIs(t, err, ErrNotEditing)
}
