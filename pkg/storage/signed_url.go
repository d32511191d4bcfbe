package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner creates and validates short-lived download tokens bound to a resource ID.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns a token of the form "<expiry>.<signature>" for resourceID.
func (s *SignedURLSigner) Generate(resourceID string) (string, time.Time, error) {
	if resourceID == "" {
		return "", time.Time{}, fmt.Errorf("resource id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	return ts + "." + s.sign(resourceID, ts), expiresAt, nil
}

// Verify checks that token was issued for resourceID and has not expired.
func (s *SignedURLSigner) Verify(resourceID, token string) error {
	ts, signature, ok := strings.Cut(token, ".")
	if !ok || ts == "" || signature == "" {
		return ErrTokenInvalid
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}
	if !hmac.Equal([]byte(s.sign(resourceID, ts)), []byte(signature)) {
		return ErrTokenInvalid
	}
	if s.now().After(time.Unix(expUnix, 0)) {
		return ErrTokenExpired
	}
	return nil
}

func (s *SignedURLSigner) sign(resourceID, ts string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(resourceID + "|" + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
