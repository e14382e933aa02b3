package media

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ErrKeysNotConfigured indicates the media-host key pair is missing, so no
// upload can be authorized.
var ErrKeysNotConfigured = errors.New("media: upload keys are not configured")

// ImageKitAuthorizer mints upload auth params the way the ImageKit host
// expects them: a one-time token, an expiry, and an HMAC-SHA1 signature of
// token+expire under the account's private key. The private key never leaves
// the server; the client only ever sees the derived signature.
type ImageKitAuthorizer struct {
	privateKey string
	publicKey  string
	ttl        time.Duration
	now        func() time.Time
}

// NewImageKitAuthorizer constructs the authorizer. Missing keys are reported
// per request rather than at construction so the rest of the service can
// still boot without media-host configuration.
func NewImageKitAuthorizer(privateKey, publicKey string, ttl time.Duration) *ImageKitAuthorizer {
	if ttl <= 0 || ttl > time.Hour {
		// The host rejects expiry windows longer than an hour.
		ttl = 30 * time.Minute
	}
	return &ImageKitAuthorizer{
		privateKey: privateKey,
		publicKey:  publicKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Authorize mints fresh credentials. Every call produces a new token, so
// signed material is never reused across upload attempts.
func (a *ImageKitAuthorizer) Authorize(ctx context.Context) (Credentials, error) {
	_ = ctx

	if a.privateKey == "" || a.publicKey == "" {
		return Credentials{}, ErrKeysNotConfigured
	}

	token := uuid.NewString()
	expire := a.now().Add(a.ttl).Unix()

	mac := hmac.New(sha1.New, []byte(a.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	signature := hex.EncodeToString(mac.Sum(nil))

	return Credentials{
		Token:     token,
		Expire:    expire,
		Signature: signature,
		PublicKey: a.publicKey,
	}, nil
}

var _ Authorizer = (*ImageKitAuthorizer)(nil)
