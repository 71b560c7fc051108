package carrier

import (
	"context"
	"time"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

const downloadTimeout = 30 * time.Second

func (c *WhatsAppCarrier) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		c.log.Infof("Paired as %s", v.ID.String())

	case *events.Connected:
		c.log.Infof("Carrier connected")

	case *events.LoggedOut:
		c.log.Warnf("Carrier logged out, re-pairing required")

	case *events.Message:
		c.handleMessage(v)

	case *events.Receipt:
		c.handleReceipt(v)
	}
}

func (c *WhatsAppCarrier) handleMessage(v *events.Message) {
	// Group chats and our own device echoes are not conversations here.
	if v.Info.IsGroup || v.Info.IsFromMe {
		return
	}

	body := v.Message.GetConversation()
	if body == "" {
		body = v.Message.GetExtendedTextMessage().GetText()
	}

	var mediaURL string
	if imgMsg := v.Message.GetImageMessage(); imgMsg != nil {
		if body == "" {
			body = imgMsg.GetCaption()
		}

		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		data, err := c.client.Download(ctx, imgMsg)
		cancel()
		if err != nil {
			c.log.Errorf("Failed to download inbound image: %v", err)
		} else {
			result, err := c.Store.Upload(context.Background(), data, imgMsg.GetMimetype())
			if err != nil {
				c.log.Errorf("Failed to store inbound image: %v", err)
			} else {
				mediaURL = result.URL
			}
		}
	}

	// Protocol noise (status updates, reactions) has neither body nor media.
	if body == "" && mediaURL == "" {
		return
	}

	from := v.Info.Sender.User
	if err := c.inbound.Ingest(from, body, mediaURL, string(v.Info.ID)); err != nil {
		c.log.Errorf("Failed to ingest message from %s: %v", from, err)
	}
}

func (c *WhatsAppCarrier) handleReceipt(v *events.Receipt) {
	var status string
	switch v.Type {
	case types.ReceiptTypeDelivered:
		status = "delivered"
	case types.ReceiptTypeRead:
		status = "read"
	default:
		return
	}

	for _, id := range v.MessageIDs {
		if err := c.inbound.ApplyDeliveryStatus(string(id), status); err != nil {
			c.log.Errorf("Failed to apply %s receipt for %s: %v", status, id, err)
		}
	}
}
