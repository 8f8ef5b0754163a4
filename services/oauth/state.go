package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// StateSeparator joins the nonce and the device code in the state parameter.
const StateSeparator = "::"

// nonceBytes matches a 24-byte url-safe token (192 bits).
const nonceBytes = 24

var (
	ErrMalformedState = errors.New("malformed oauth state")
	ErrInvalidNonce   = errors.New("nonce must be non-empty and must not contain the state separator")
	ErrInvalidDevice  = errors.New("device code must be non-empty and must not contain the state separator")
)

// AuthState binds an anti-forgery nonce to the device code that started the
// flow. It travels through the consent dialog as "<nonce>::<device_code>".
type AuthState struct {
	Nonce      string
	DeviceCode string
}

// NewAuthState generates a fresh nonce for deviceCode.
func NewAuthState(deviceCode string) (AuthState, error) {
	nonce, err := generateNonce()
	if err != nil {
		return AuthState{}, err
	}
	return AuthState{Nonce: nonce, DeviceCode: deviceCode}, nil
}

// Encode renders the wire form of the state.
func (s AuthState) Encode() (string, error) {
	if s.Nonce == "" || strings.Contains(s.Nonce, StateSeparator) {
		return "", ErrInvalidNonce
	}
	if s.DeviceCode == "" || strings.Contains(s.DeviceCode, StateSeparator) {
		return "", ErrInvalidDevice
	}
	return s.Nonce + StateSeparator + s.DeviceCode, nil
}

// DecodeAuthState parses the wire form. It accepts exactly one separator
// with a non-empty nonce and a non-empty device code.
func DecodeAuthState(raw string) (AuthState, error) {
	switch n := strings.Count(raw, StateSeparator); n {
	case 0:
		return AuthState{}, fmt.Errorf("%w: missing %q separator", ErrMalformedState, StateSeparator)
	case 1:
	default:
		return AuthState{}, fmt.Errorf("%w: %d separators", ErrMalformedState, n)
	}
	nonce, deviceCode, _ := strings.Cut(raw, StateSeparator)
	if nonce == "" {
		return AuthState{}, fmt.Errorf("%w: empty nonce", ErrMalformedState)
	}
	if deviceCode == "" {
		return AuthState{}, fmt.Errorf("%w: empty device code", ErrMalformedState)
	}
	return AuthState{Nonce: nonce, DeviceCode: deviceCode}, nil
}

func generateNonce() (string, error) {
	randomBytes := make([]byte, nonceBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	// RawURLEncoding never emits ':', so the nonce cannot contain the separator.
	return base64.RawURLEncoding.EncodeToString(randomBytes), nil
}
