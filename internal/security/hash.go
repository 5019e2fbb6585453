// Package security holds the digest, message authentication and topic
// derivation primitives shared by the device and the command signer.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// TopicSuffixLength is the number of hex characters kept from the topic digest.
const TopicSuffixLength = 10

// SHA256Hex returns the lowercase hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HMACSHA256Base64 returns the standard base64 encoding of HMAC-SHA256(key, message).
func HMACSHA256Base64(key, message []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ConstantTimeEquals compares a and b without returning early on the first
// differing byte. Inputs of different length are never equal.
func ConstantTimeEquals(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// DeriveTopicSuffix returns the first TopicSuffixLength hex characters of
// SHA-256("<deviceID>:<secret>").
func DeriveTopicSuffix(deviceID, secret string) string {
	return SHA256Hex([]byte(deviceID + ":" + secret))[:TopicSuffixLength]
}
