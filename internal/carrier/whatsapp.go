package carrier

import (
	"context"
	"fmt"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	waProto "go.mau.fi/whatsmeow/binary/proto"

	"messenger-backend/internal/storage"
)

// WhatsAppCarrier bridges the gateway to WhatsApp through a single paired
// device. Outbound sends go through Send; inbound messages and receipts
// arrive via the whatsmeow event stream and are handed to the InboundHandler.
type WhatsAppCarrier struct {
	Container *sqlstore.Container
	Store     storage.ObjectStore
	LogLevel  string

	// OnQR receives pairing codes while the device is not yet linked.
	OnQR func(code string)

	inbound InboundHandler
	client  *whatsmeow.Client
	log     waLog.Logger
	mu      sync.Mutex
}

func NewWhatsAppCarrier(ctx context.Context, databaseURL, logLevel string, store storage.ObjectStore, inbound InboundHandler) (*WhatsAppCarrier, error) {
	dbLog := waLog.Stdout("Database", logLevel, true)
	container, err := sqlstore.New(ctx, "postgres", databaseURL, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize carrier store: %w", err)
	}

	return &WhatsAppCarrier{
		Container: container,
		Store:     store,
		LogLevel:  logLevel,
		inbound:   inbound,
		log:       waLog.Stdout("Carrier", logLevel, true),
	}, nil
}

// Connect brings up the WhatsApp client. If the device is not paired yet the
// QR codes are passed to OnQR until pairing succeeds.
func (c *WhatsAppCarrier) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil && c.client.IsConnected() {
		return nil
	}

	device, err := c.Container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to load carrier device: %w", err)
	}

	clientLog := waLog.Stdout("Client", c.LogLevel, true)
	client := whatsmeow.NewClient(device, clientLog)
	client.AddEventHandler(c.handleEvent)
	c.client = client

	if client.Store.ID == nil {
		// Not paired: surface QR codes until the user links the device.
		qrChan, _ := client.GetQRChannel(context.Background())
		if err := client.Connect(); err != nil {
			return err
		}
		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					c.emitQR(evt.Code)
				}
			}
		}()
		return nil
	}

	return client.Connect()
}

// emitQR is the only consumer of pairing codes: it always logs the code so
// an operator can pair from the server logs, and forwards it to OnQR when a
// realtime listener is wired.
func (c *WhatsAppCarrier) emitQR(code string) {
	c.log.Infof("Pairing QR code: %s", code)
	if c.OnQR != nil {
		c.OnQR(code)
	}
}

func (c *WhatsAppCarrier) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		c.client.Disconnect()
	}
}

// Send transmits one message and returns the carrier-assigned message id.
// mediaURL, when set, must resolve through the object store.
func (c *WhatsAppCarrier) Send(ctx context.Context, to, body, mediaURL string) (string, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil || !client.IsConnected() {
		return "", fmt.Errorf("carrier not connected")
	}

	jid, err := normalizeJID(to)
	if err != nil {
		return "", err
	}

	var msg *waProto.Message
	if mediaURL != "" {
		msg, err = c.buildImageMessage(ctx, client, body, mediaURL)
		if err != nil {
			return "", err
		}
	} else {
		msg = &waProto.Message{Conversation: proto.String(body)}
	}

	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return "", err
	}
	return string(resp.ID), nil
}

func (c *WhatsAppCarrier) buildImageMessage(ctx context.Context, client *whatsmeow.Client, caption, mediaURL string) (*waProto.Message, error) {
	data, err := c.Store.Download(ctx, mediaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load media for send: %w", err)
	}

	uploaded, err := client.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media to carrier: %w", err)
	}

	return &waProto.Message{
		ImageMessage: &waProto.ImageMessage{
			Caption:       proto.String(caption),
			Mimetype:      proto.String("image/jpeg"),
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &uploaded.FileLength,
		},
	}, nil
}

// normalizeJID turns a bare phone number or JID string into a full JID.
// types.ParseJID doesn't error on plain numbers, so the user part is checked
// explicitly.
func normalizeJID(raw string) (types.JID, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(raw, "+"))
	if cleaned == "" {
		return types.JID{}, fmt.Errorf("empty address")
	}

	if !strings.Contains(cleaned, "@") {
		cleaned = cleaned + "@" + types.DefaultUserServer
	}

	jid, err := types.ParseJID(cleaned)
	if err != nil {
		return types.JID{}, err
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("failed to parse address: %s", raw)
	}
	return jid, nil
}
