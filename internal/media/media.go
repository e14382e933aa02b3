package media

import "context"

// Credentials are the short-lived values a client needs to upload an asset
// directly to the media host. The upload itself never traverses this
// service.
type Credentials struct {
	// Token and Signature authenticate ImageKit-style uploads.
	Token     string
	Signature string
	// Expire is the unix timestamp (seconds) after which the credentials are
	// rejected by the host.
	Expire int64
	// PublicKey identifies the media-host account on the client side.
	PublicKey string
	// UploadURL is set by presigned-URL drivers instead of Token/Signature.
	UploadURL string
}

// Authorizer issues upload credentials scoped to a short time window.
// Credentials must be requested fresh per upload attempt; implementations
// never cache or reuse signed material.
type Authorizer interface {
	Authorize(ctx context.Context) (Credentials, error)
}
