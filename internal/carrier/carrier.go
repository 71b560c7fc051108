package carrier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by the disabled carrier; sends recorded
// against it end as failed messages rather than panics or nil checks.
var ErrNotConfigured = errors.New("carrier not configured")

// InboundHandler is the ingestion surface the carrier feeds: raw inbound
// messages and delivery-state callbacks keyed by the carrier's message id.
type InboundHandler interface {
	Ingest(fromAddress, body, mediaURL, providerMessageID string) error
	ApplyDeliveryStatus(providerMessageID, status string) error
}

// Disabled stands in when no carrier is configured. Constructed once at
// process start so call sites never nil-check the transport.
type Disabled struct{}

func NewDisabled() *Disabled { return &Disabled{} }

func (d *Disabled) Send(ctx context.Context, to, body, mediaURL string) (string, error) {
	return "", ErrNotConfigured
}

func (d *Disabled) Connect(ctx context.Context) error { return nil }

func (d *Disabled) Disconnect() {}
