package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedIngest struct {
	From       string
	Body       string
	MediaURL   string
	ProviderID string
}

type recordedStatus struct {
	ProviderID string
	Status     string
}

type fakeInbound struct {
	ingests  []recordedIngest
	statuses []recordedStatus
	err      error
}

func (f *fakeInbound) Ingest(fromAddress, body, mediaURL, providerMessageID string) error {
	f.ingests = append(f.ingests, recordedIngest{fromAddress, body, mediaURL, providerMessageID})
	return f.err
}

func (f *fakeInbound) ApplyDeliveryStatus(providerMessageID, status string) error {
	f.statuses = append(f.statuses, recordedStatus{providerMessageID, status})
	return f.err
}

func postForm(t *testing.T, h *WebhookHandler, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/inbound", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Receive(rec, req)
	return rec
}

func TestWebhookInboundMessage(t *testing.T) {
	inbound := &fakeInbound{}
	h := NewWebhookHandler(inbound)

	rec := postForm(t, h, url.Values{
		"From":       {"whatsapp:+15550100001"},
		"Body":       {"hello"},
		"MediaUrl0":  {"https://cdn.example/img.jpg"},
		"MessageSid": {"SM123"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, inbound.ingests, 1)
	assert.Equal(t, recordedIngest{
		From:       "whatsapp:+15550100001",
		Body:       "hello",
		MediaURL:   "https://cdn.example/img.jpg",
		ProviderID: "SM123",
	}, inbound.ingests[0])
	assert.Empty(t, inbound.statuses)
}

func TestWebhookStatusCallback(t *testing.T) {
	inbound := &fakeInbound{}
	h := NewWebhookHandler(inbound)

	rec := postForm(t, h, url.Values{
		"MessageSid":    {"SM123"},
		"MessageStatus": {"delivered"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, inbound.statuses, 1)
	assert.Equal(t, recordedStatus{ProviderID: "SM123", Status: "delivered"}, inbound.statuses[0])
	assert.Empty(t, inbound.ingests)
}

func TestWebhookJSONPayload(t *testing.T) {
	inbound := &fakeInbound{}
	h := NewWebhookHandler(inbound)

	body := `{"From":"+15550100001","Body":"hi","MessageSid":"SM9"}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/inbound", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Receive(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, inbound.ingests, 1)
	assert.Equal(t, "+15550100001", inbound.ingests[0].From)
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	inbound := &fakeInbound{err: errors.New("database down")}
	h := NewWebhookHandler(inbound)

	rec := postForm(t, h, url.Values{
		"From": {"+15550100001"},
		"Body": {"hello"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Garbage in, 200 out: the carrier never gets a retry signal.
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/inbound", strings.NewReader("%%%not-a-form"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.Receive(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
