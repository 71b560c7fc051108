package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"messenger-backend/internal/carrier"
	"messenger-backend/internal/utils"
)

// WebhookHandler is the carrier-facing intake endpoint. It always answers
// 200: a non-2xx would make the carrier retry deliveries we have already
// decided to drop.
type WebhookHandler struct {
	Inbound carrier.InboundHandler
}

func NewWebhookHandler(inbound carrier.InboundHandler) *WebhookHandler {
	return &WebhookHandler{Inbound: inbound}
}

type webhookPayload struct {
	From          string `json:"From"`
	Body          string `json:"Body"`
	MediaURL      string `json:"MediaUrl0"`
	MessageSid    string `json:"MessageSid"`
	MessageStatus string `json:"MessageStatus"`
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload := h.parse(r)

	// A status value marks a delivery-receipt callback for an earlier
	// outbound message; anything else is inbound content.
	if payload.MessageStatus != "" && payload.MessageSid != "" {
		if err := h.Inbound.ApplyDeliveryStatus(payload.MessageSid, payload.MessageStatus); err != nil {
			log.Printf("[Webhook] status callback for %s failed: %v", payload.MessageSid, err)
		}
	} else if err := h.Inbound.Ingest(payload.From, payload.Body, payload.MediaURL, payload.MessageSid); err != nil {
		log.Printf("[Webhook] inbound ingest failed: %v", err)
	}

	utils.SuccessResponse(w, http.StatusOK, nil, "")
}

func (h *WebhookHandler) parse(r *http.Request) webhookPayload {
	var payload webhookPayload

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("[Webhook] malformed JSON payload: %v", err)
		}
		return payload
	}

	if err := r.ParseForm(); err != nil {
		log.Printf("[Webhook] malformed form payload: %v", err)
		return payload
	}
	payload.From = r.PostFormValue("From")
	payload.Body = r.PostFormValue("Body")
	payload.MediaURL = r.PostFormValue("MediaUrl0")
	payload.MessageSid = r.PostFormValue("MessageSid")
	payload.MessageStatus = r.PostFormValue("MessageStatus")
	return payload
}
