package carrier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	waLog "go.mau.fi/whatsmeow/util/log"
)

func TestEmitQRForwardsCode(t *testing.T) {
	var received []string
	c := &WhatsAppCarrier{
		log: waLog.Noop,
		OnQR: func(code string) {
			received = append(received, code)
		},
	}

	c.emitQR("2@pairing-code-1")
	c.emitQR("2@pairing-code-2")

	assert.Equal(t, []string{"2@pairing-code-1", "2@pairing-code-2"}, received)
}

func TestEmitQRWithoutListenerDoesNotPanic(t *testing.T) {
	c := &WhatsAppCarrier{log: waLog.Noop}

	assert.NotPanics(t, func() {
		c.emitQR("2@pairing-code")
	})
}

func TestNormalizeJID(t *testing.T) {
	jid, err := normalizeJID("+15550100001")
	assert.NoError(t, err)
	assert.Equal(t, "15550100001", jid.User)

	_, err = normalizeJID("")
	assert.Error(t, err)
}
