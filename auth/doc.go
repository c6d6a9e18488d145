// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and session token signing.

# IDs

GenerateID returns a random hex identifier from crypto/rand:

	pollID, err := auth.GenerateID(16) // 32 hex chars

# Session Tokens

Session tokens are stateless HMAC signatures over the user ID, shaped as
"<userID>.<signature>" with a URL-safe, unpadded base64 signature:

	token := auth.MintSessionToken(userID, cfg.SessionSalt)
	userID, err := auth.VerifySessionToken(token, cfg.SessionSalt)

Verification uses a constant-time comparison. A verified token only proves
the user ID was minted by this server; handlers still load the user row to
pick up the current role.
*/
package auth
