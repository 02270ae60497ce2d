package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Login links expire quickly; they are delivered over Slack DM and meant to
// be clicked right away.
const linkTokenTTL = 15 * time.Minute

var (
	ErrMalformedToken = errors.New("malformed link token")
	ErrExpiredToken   = errors.New("link token expired")
	ErrTokenSignature = errors.New("link token signature mismatch")
)

// LinkToken is the verified payload of a one-time login link.
type LinkToken struct {
	SlackUserID string
	Email       string
	IssuedAt    time.Time
}

// GenerateLinkToken signs a one-time login token binding a Slack member to
// an email address. The token is URL-safe.
func GenerateLinkToken(secret, slackUserID, email string) string {
	return generateLinkTokenAt(secret, slackUserID, email, time.Now())
}

func generateLinkTokenAt(secret, slackUserID, email string, now time.Time) string {
	payload := fmt.Sprintf("%s:%s:%d", slackUserID, email, now.UnixMilli())
	sig := signPayload(secret, payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "|" + sig))
}

// VerifyLinkToken checks the token's signature and age, returning the bound
// identity.
func VerifyLinkToken(secret, token string) (LinkToken, error) {
	return verifyLinkTokenAt(secret, token, time.Now())
}

func verifyLinkTokenAt(secret, token string, now time.Time) (LinkToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return LinkToken{}, ErrMalformedToken
	}

	payload, sig, ok := strings.Cut(string(raw), "|")
	if !ok {
		return LinkToken{}, ErrMalformedToken
	}
	if !hmac.Equal([]byte(signPayload(secret, payload)), []byte(sig)) {
		return LinkToken{}, ErrTokenSignature
	}

	// payload is slackUserID:email:issuedAtMillis; the email itself may
	// contain no colons, so a simple split is safe.
	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return LinkToken{}, ErrMalformedToken
	}
	millis, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return LinkToken{}, ErrMalformedToken
	}

	issued := time.UnixMilli(millis)
	if now.Sub(issued) > linkTokenTTL {
		return LinkToken{}, ErrExpiredToken
	}

	return LinkToken{
		SlackUserID: parts[0],
		Email:       parts[1],
		IssuedAt:    issued,
	}, nil
}

func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
