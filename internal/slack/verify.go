// Package slack implements the Slack side of the storefront: slash command
// signature verification, signed one-time login links and a minimal Web API
// client.
package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Slack rejects requests older than five minutes; so do we, to blunt
// replayed signatures.
const maxSignatureAge = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("missing slack signature headers")
	ErrStaleTimestamp   = errors.New("slack request timestamp too old")
	ErrBadSignature     = errors.New("slack signature mismatch")
)

// VerifySignature checks a Slack request signature (the v0 signing scheme:
// HMAC-SHA256 over "v0:<timestamp>:<body>").
func VerifySignature(signingSecret, timestamp, signature string, body []byte) error {
	return verifySignatureAt(signingSecret, timestamp, signature, body, time.Now())
}

func verifySignatureAt(signingSecret, timestamp, signature string, body []byte, now time.Time) error {
	if timestamp == "" || signature == "" {
		return ErrMissingSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrMissingSignature)
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return ErrStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(signingSecret))
	fmt.Fprintf(mac, "v0:%s:", timestamp)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}
