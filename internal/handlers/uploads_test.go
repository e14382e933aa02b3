package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipvault/backend/internal/media"
)

type uploadRelayStub struct {
	creds media.Credentials
	err   error
	calls int
}

func (s *uploadRelayStub) Authorize(context.Context) (media.Credentials, error) {
	s.calls++
	if s.err != nil {
		return media.Credentials{}, s.err
	}
	return s.creds, nil
}

func TestUploadHandlerAuthorize(t *testing.T) {
	relay := &uploadRelayStub{creds: media.Credentials{
		Token:     "token-1",
		Expire:    1700000000,
		Signature: "deadbeef",
		PublicKey: "public_key",
	}}
	handler := UploadHandler{Relay: relay}

	req := httptest.NewRequest(http.MethodGet, "/upload-auth", nil)
	rec := httptest.NewRecorder()
	handler.Authorize(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		AuthParams struct {
			Token     string `json:"token"`
			Expire    int64  `json:"expire"`
			Signature string `json:"signature"`
		} `json:"authParams"`
		PublicKey string `json:"publicKey"`
		UploadURL string `json:"uploadUrl"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if payload.AuthParams.Token != "token-1" || payload.AuthParams.Expire != 1700000000 || payload.AuthParams.Signature != "deadbeef" {
		t.Fatalf("unexpected auth params: %+v", payload.AuthParams)
	}
	if payload.PublicKey != "public_key" {
		t.Fatalf("unexpected public key %q", payload.PublicKey)
	}
	if payload.UploadURL != "" {
		t.Fatalf("uploadUrl should be omitted when unset, got %q", payload.UploadURL)
	}
	if relay.calls != 1 {
		t.Fatalf("expected a single relay call, got %d", relay.calls)
	}
}

func TestUploadHandlerAuthorizePresignedDriver(t *testing.T) {
	relay := &uploadRelayStub{creds: media.Credentials{
		Expire:    1700000000,
		UploadURL: "https://media.example.com/bucket/uploads/abc",
	}}
	handler := UploadHandler{Relay: relay}

	req := httptest.NewRequest(http.MethodGet, "/upload-auth", nil)
	rec := httptest.NewRecorder()
	handler.Authorize(rec, req)

	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["uploadUrl"] != "https://media.example.com/bucket/uploads/abc" {
		t.Fatalf("expected uploadUrl in payload, got %v", payload["uploadUrl"])
	}
	if payload["expire"] != float64(1700000000) {
		t.Fatalf("expected expire in payload, got %v", payload["expire"])
	}
	if _, ok := payload["authParams"]; ok {
		t.Fatal("presigned response must not carry authParams")
	}
}

func TestUploadHandlerAuthorizeFailure(t *testing.T) {
	handler := UploadHandler{Relay: &uploadRelayStub{err: errors.New("keys missing")}}

	req := httptest.NewRequest(http.MethodGet, "/upload-auth", nil)
	rec := httptest.NewRecorder()
	handler.Authorize(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	if got := decodeError(t, rec); got != "Authentication for media host failed" {
		t.Fatalf("unexpected error message %q", got)
	}
}

func TestUploadHandlerAuthorizeNoRelay(t *testing.T) {
	handler := UploadHandler{}

	req := httptest.NewRequest(http.MethodGet, "/upload-auth", nil)
	rec := httptest.NewRecorder()
	handler.Authorize(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestUploadHandlerAuthorizeMethodNotAllowed(t *testing.T) {
	handler := UploadHandler{Relay: &uploadRelayStub{}}

	req := httptest.NewRequest(http.MethodPost, "/upload-auth", nil)
	rec := httptest.NewRecorder()
	handler.Authorize(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
}
