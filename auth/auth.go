// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MintSessionToken creates an HMAC-signed session token for a user.
// The token is "<userID>.<signature>" so the server can verify it
// statelessly and then look the user up by ID.
func MintSessionToken(userID, salt string) string {
	return userID + "." + sign(userID, salt)
}

// VerifySessionToken checks the token signature and returns the user ID
// it was minted for.
func VerifySessionToken(token, salt string) (string, error) {
	userID, sig, ok := strings.Cut(token, ".")
	if !ok || userID == "" {
		return "", ErrInvalidSessionToken
	}
	if !hmac.Equal([]byte(sig), []byte(sign(userID, salt))) {
		return "", ErrInvalidSessionToken
	}
	return userID, nil
}

func sign(payload, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(payload))
	sum := h.Sum(nil)
	// URL-safe base64 without padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}
