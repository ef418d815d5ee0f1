// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/MKhiriev/go-money-keeper/internal/utils"
)

// tokenBytes is the entropy of every issued token (256 bits).
const tokenBytes = 32

// hmacTokenGenerator is the [TokenGenerator] that hashes tokens with
// HMAC-SHA256 under a server-side key.
type hmacTokenGenerator struct {
	hashKey string
	random  io.Reader
}

// NewTokenGenerator returns a [TokenGenerator] reading from the OS CSPRNG.
func NewTokenGenerator(hashKey string) TokenGenerator {
	return &hmacTokenGenerator{hashKey: hashKey, random: rand.Reader}
}

// Generate reads 32 random bytes and encodes them as unpadded base64url,
// which is safe in cookies, headers and URLs.
func (g *hmacTokenGenerator) Generate() (string, string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", "", err
	}

	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, g.HashToken(raw), nil
}

func (g *hmacTokenGenerator) HashToken(raw string) string {
	return utils.HashString(raw, g.hashKey)
}
