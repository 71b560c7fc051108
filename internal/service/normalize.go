package service

import "strings"

const carrierPrefix = "whatsapp:"

// NormalizeAddress reduces a counterparty identifier to its canonical form:
// carrier prefix stripped, whitespace and separator characters removed. Every
// lookup and every stored conversation/contact key goes through this, on both
// the outbound and the inbound path. Idempotent.
func NormalizeAddress(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, carrierPrefix) {
		s = s[len(carrierPrefix):]
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
