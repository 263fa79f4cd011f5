package service

import (
	"crypto/rand"
	"fmt"

	apperrors "github.com/familiez/familiez-auth/internal/errors"
	"golang.org/x/oauth2"
)

// tokenAlphabet is the 62-symbol set random tokens are drawn from.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	// MinTokenLength bounds how short a random token may be.
	MinTokenLength = 24
	// StateLength is the length of the CSRF state parameter.
	StateLength = 24
	// VerifierLength is the length of the PKCE code verifier.
	VerifierLength = 64

	minVerifierLength = 43
	maxVerifierLength = 128
)

// maxUnbiased is the largest multiple of len(tokenAlphabet) that fits in a byte.
// Bytes at or above it are rejected so every symbol is equally likely.
const maxUnbiased = 256 - 256%len(tokenAlphabet)

// RandomToken returns n symbols drawn uniformly from the token alphabet
// using the operating system's CSPRNG.
func RandomToken(n int) (string, error) {
	if n < MinTokenLength {
		return "", fmt.Errorf("token length %d below minimum %d", n, MinTokenLength)
	}

	out := make([]byte, 0, n)
	buf := make([]byte, n+n/4)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// Challenge derives the S256 PKCE challenge for verifier: base64url without padding
// of the SHA-256 digest.
func Challenge(verifier string) (string, error) {
	if l := len(verifier); l < minVerifierLength || l > maxVerifierLength {
		return "", apperrors.Newf(apperrors.ErrCodeChallengeGenerationFailed,
			"code verifier length %d outside %d..%d", l, minVerifierLength, maxVerifierLength)
	}
	return oauth2.S256ChallengeFromVerifier(verifier), nil
}
