// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EventPrefix prefixes form submission event names, e.g. "form.contact".
const EventPrefix = "form."

// FormEvent returns the event name for a form submission.
func FormEvent(form string) string {
	return EventPrefix + form
}

// Envelope is the JSON body of a delivery.
type Envelope struct {
	Event      string            `json:"event"`
	DeliveryID string            `json:"delivery_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Data       map[string]string `json:"data"`
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}
