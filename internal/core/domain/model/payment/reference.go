package payment

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// ReferenceLength matches the gateway's AccountReference limit.
	ReferenceLength   = 12
	referenceAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// NewReference generates the internal, client-side payment reference.
func NewReference() (string, error) {
	return gonanoid.Generate(referenceAlphabet, ReferenceLength)
}
