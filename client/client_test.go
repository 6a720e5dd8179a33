package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmail/models"
)

const testBaseURL = "https://mail.test.com"

func newTestClient() *Client {
	return NewClient(testBaseURL+"/", StaticTokenSource("test-token"))
}

func TestListEmails(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
			assert.Equal(t, "drafts", req.URL.Query().Get("folder"))
			assert.Equal(t, "25", req.URL.Query().Get("limit"))
			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"emails": []map[string]interface{}{
					{"emailId": "u1-1", "subject": "A", "folder": "drafts"},
					{"emailId": "u1-2", "subject": "B", "folder": "drafts"},
				},
				"count": 2,
			})
		})

	emails, err := c.ListEmails(context.Background(), "drafts", 25)

	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "u1-1", emails[0].ID)
	assert.Equal(t, "A", emails[0].Subject)
}

func TestListEmails_DefaultsToInbox(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "inbox", req.URL.Query().Get("folder"))
			return httpmock.NewJsonResponse(200, map[string]interface{}{"emails": []interface{}{}})
		})

	_, err := c.ListEmails(context.Background(), "", 0)
	require.NoError(t, err)
}

func TestTokenSourceFailure_NoRequestMade(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	failing := TokenSourceFunc(func(ctx context.Context) (string, error) {
		return "", errors.New("session expired")
	})
	c := NewClient(testBaseURL, failing)

	_, err := c.ListEmails(context.Background(), "inbox", 10)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "no network call without a credential")
}

func TestGetEmail(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails/u1-1",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"emailId": "u1-1",
			"subject": "Hello",
			"body":    "<p>full</p>",
			"folder":  "inbox",
		}))

	rec, err := c.GetEmail(context.Background(), "u1-1")

	require.NoError(t, err)
	assert.Equal(t, "u1-1", rec.ID)
	assert.Equal(t, "<p>full</p>", rec.Body)
}

func TestGetEmail_NotFound(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails/gone",
		httpmock.NewJsonResponderOrPanic(404, map[string]string{"message": "Email not found"}))

	_, err := c.GetEmail(context.Background(), "gone")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "gone", notFound.ID)
}

func TestSendEmail(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("POST", testBaseURL+"/emails/send",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{
			"message":   "Email sent successfully",
			"emailId":   "u1-100",
			"messageId": "<abc@test>",
		}))

	result, err := c.SendEmail(context.Background(), models.OutgoingEmail{
		To:      []string{"a@example.com"},
		Subject: "Hi",
		Body:    "hello",
	})

	require.NoError(t, err)
	assert.Equal(t, "u1-100", result.EmailID)
	assert.Equal(t, "<abc@test>", result.MessageID)
}

func TestSendEmail_ProviderRejection(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("POST", testBaseURL+"/emails/send",
		httpmock.NewJsonResponderOrPanic(502, map[string]string{
			"message": "Mail provider rejected the message",
		}))

	_, err := c.SendEmail(context.Background(), models.OutgoingEmail{
		To:      []string{"bad@example.com"},
		Subject: "Hi",
		Body:    "hello",
	})

	var deliveryErr *DeliveryError
	require.True(t, errors.As(err, &deliveryErr))
	assert.Contains(t, deliveryErr.Reason, "rejected")
}

func TestSaveDraft_PassesDraftID(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("POST", testBaseURL+"/emails/draft",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]interface{}
			json.NewDecoder(req.Body).Decode(&body)
			assert.Equal(t, "u1-draft-7", body["draftId"])
			return httpmock.NewJsonResponse(200, map[string]string{
				"emailId": "u1-draft-7",
				"draftId": "u1-draft-7",
			})
		})

	result, err := c.SaveDraft(context.Background(), models.OutgoingEmail{Subject: "WIP"}, "u1-draft-7")

	require.NoError(t, err)
	assert.Equal(t, "u1-draft-7", result.DraftID)
}

func TestDeleteEmail_NotFoundIsTyped(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("DELETE", testBaseURL+"/emails/gone",
		httpmock.NewJsonResponderOrPanic(404, map[string]string{"message": "Email not found"}))

	err := c.DeleteEmail(context.Background(), "gone")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestMarkAsRead(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("PUT", testBaseURL+"/emails/u1-1/read",
		httpmock.NewJsonResponderOrPanic(200, map[string]string{"message": "ok"}))

	require.NoError(t, c.MarkAsRead(context.Background(), "u1-1"))
}

func TestMarkAsStarred_SendsFlag(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("PUT", testBaseURL+"/emails/u1-1/star",
		func(req *http.Request) (*http.Response, error) {
			var body map[string]bool
			json.NewDecoder(req.Body).Decode(&body)
			assert.False(t, body["starred"])
			return httpmock.NewJsonResponse(200, map[string]string{"message": "ok"})
		})

	require.NoError(t, c.MarkAsStarred(context.Background(), "u1-1", false))
}

func TestUnauthorizedMapsToAuthError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails",
		httpmock.NewJsonResponderOrPanic(401, map[string]string{"message": "Invalid token"}))

	_, err := c.ListEmails(context.Background(), "inbox", 10)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
}

func TestServerErrorCarriesMessage(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails",
		httpmock.NewJsonResponderOrPanic(500, map[string]string{"message": "Error listing emails"}))

	_, err := c.ListEmails(context.Background(), "inbox", 10)

	var srvErr *ServerError
	require.True(t, errors.As(err, &srvErr))
	assert.Equal(t, 500, srvErr.Status)
	assert.Equal(t, "Error listing emails", srvErr.Message)
}

func TestTransportFailureMapsToNetworkError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	c := newTestClient()

	httpmock.RegisterResponder("GET", testBaseURL+"/emails",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := c.ListEmails(context.Background(), "inbox", 10)

	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
}
