// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
)

// ApprovalToken is the single-use capability minted when a visitor requests
// leader access. The raw secret leaves the process exactly once, inside the
// approve/deny links mailed to administrators; only its hash is stored.
// A consumed token is a structural state (ConsumedAt set, hash cleared),
// not an absent field.
type ApprovalToken struct {
	ForUserID  int64
	Secret     string // raw secret, only populated at mint time
	SecretHash string
	ConsumedAt sql.NullTime
}

// MintApprovalToken creates a fresh approval token for the given user.
func MintApprovalToken(userID int64) (ApprovalToken, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return ApprovalToken{}, err
	}

	secret := base64.URLEncoding.EncodeToString(buf)
	return ApprovalToken{
		ForUserID:  userID,
		Secret:     secret,
		SecretHash: HashApprovalToken(secret),
	}, nil
}

// HashApprovalToken returns the SHA-256 hash of a raw token secret, hex
// encoded for storage.
func HashApprovalToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Consumed reports whether the token has already been used.
func (t ApprovalToken) Consumed() bool {
	return t.ConsumedAt.Valid
}
