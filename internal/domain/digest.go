package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDigestMismatch reports a payload whose sha256 field does not match its content.
var ErrDigestMismatch = errors.New("digest mismatch")

// PrettyJSON serializes v with 2-space indentation, the form the digest is taken over.
func PrettyJSON(v any) ([]byte, error) {
	return encodeJSON(v, "  ")
}

// CompactJSON serializes v without indentation for delivery.
func CompactJSON(v any) ([]byte, error) {
	return encodeJSON(v, "")
}

// encodeJSON leaves <, > and & unescaped and drops the encoder's trailing
// newline so the bytes match what browser consumers reproduce.
func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Digest computes the payload digest: the hex SHA-256 of the pretty
// serialization with the sha256 field held at "". The payload is not modified.
func Digest(p MonthPayload) (string, error) {
	p.SHA256 = ""
	pretty, err := PrettyJSON(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(pretty)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes the digest and stores it in p.SHA256.
func Seal(p *MonthPayload) (string, error) {
	sum, err := Digest(*p)
	if err != nil {
		return "", err
	}
	p.SHA256 = sum
	return sum, nil
}

// VerifyDigest recomputes the digest of a sealed payload and compares it to
// the stored value.
func VerifyDigest(p MonthPayload) error {
	if p.SHA256 == "" {
		return fmt.Errorf("%w: payload is not sealed", ErrDigestMismatch)
	}
	sum, err := Digest(p)
	if err != nil {
		return err
	}
	if sum != p.SHA256 {
		return fmt.Errorf("%w: stored %s, computed %s", ErrDigestMismatch, p.SHA256, sum)
	}
	return nil
}
