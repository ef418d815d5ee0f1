// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

const testHashKey = "test-secret-key"

func TestHashString_MatchesHMAC(t *testing.T) {
	data := "session-token-value"

	got := HashString(data, testHashKey)

	mac := hmac.New(sha256.New, []byte(testHashKey))
	mac.Write([]byte(data))
	want := hex.EncodeToString(mac.Sum(nil))

	if got != want {
		t.Errorf("HashString mismatch:\n  got:  %s\n  want: %s", got, want)
	}
}

func TestHashString_Deterministic(t *testing.T) {
	if HashString("abc", testHashKey) != HashString("abc", testHashKey) {
		t.Fatal("hash must be deterministic for the same input")
	}
}

func TestHashString_DifferentKeys(t *testing.T) {
	if HashString("abc", "key-one") == HashString("abc", "key-two") {
		t.Error("different keys must produce different hashes for the same data")
	}
}

func TestHashString_DifferentInputs(t *testing.T) {
	if HashString("token-1", testHashKey) == HashString("token-2", testHashKey) {
		t.Error("different inputs must produce different hashes")
	}
}

func TestHashBytes_EqualsHashString(t *testing.T) {
	if HashBytes([]byte("payload"), testHashKey) != HashString("payload", testHashKey) {
		t.Error("HashBytes and HashString must agree")
	}
}

func TestVerifyHash(t *testing.T) {
	body := []byte(`{"event_id":"evt_1","status":"active"}`)
	sig := HashBytes(body, testHashKey)

	tests := []struct {
		name      string
		body      []byte
		signature string
		key       string
		want      bool
	}{
		{name: "valid", body: body, signature: sig, key: testHashKey, want: true},
		{name: "tampered body", body: []byte(`{"event_id":"evt_1","status":"canceled"}`), signature: sig, key: testHashKey, want: false},
		{name: "wrong key", body: body, signature: sig, key: "other", want: false},
		{name: "not hex", body: body, signature: "zz-not-hex", key: testHashKey, want: false},
		{name: "empty signature", body: body, signature: "", key: testHashKey, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyHash(tt.body, tt.signature, tt.key); got != tt.want {
				t.Errorf("VerifyHash() = %v, want %v", got, tt.want)
			}
		})
	}
}
