package models

import "time"

// Account represents a registered ClipVault user. Password holds only the
// bcrypt hash; the clear-text secret never survives the register request.
type Account struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner is the denormalized snapshot of the uploading account stamped on each
// video at creation time. It is a value copy kept for display stability, not
// a live reference back to the accounts table.
type Owner struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Transformation describes the rendition the player requests from the media
// host. Quality is bounded to [1,100].
type Transformation struct {
	Height  int `json:"height"`
	Width   int `json:"width"`
	Quality int `json:"quality"`
}

// DefaultTransformation fills in transformation values a client omits. It is
// injected at record-creation time and must not be mutated.
var DefaultTransformation = Transformation{
	Height:  1920,
	Width:   1080,
	Quality: 100,
}

// Video is a published video record. The binary asset lives on the media
// host; VideoURL and ThumbnailURL point at it.
type Video struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	VideoURL       string         `json:"videoUrl"`
	ThumbnailURL   string         `json:"thumbnailUrl"`
	Controls       bool           `json:"controls"`
	Owner          Owner          `json:"owner"`
	Transformation Transformation `json:"transformation"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
