package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

func hmacSignature(secret, encoded string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verifySignature(secret, encoded, signature string) bool {
	expectedSignature := hmacSignature(secret, encoded)
	return hmac.Equal([]byte(signature), []byte(expectedSignature))
}

// EncodeCursor signs the offset of the next page together with a
// fingerprint of the query that produced it.
func EncodeCursor(secret string, offset int, query string) string {
	data := response.CursorData{Offset: offset, Query: query}
	jsonData, _ := json.Marshal(data)
	encoded := base64.RawURLEncoding.EncodeToString(jsonData)
	signature := hmacSignature(secret, encoded)

	return encoded + "." + signature
}

func DecodeCursor(secret, token string) (response.CursorData, error) {
	var cursor response.CursorData

	parts := strings.Split(token, ".")

	if len(parts) != 2 {
		return cursor, fmt.Errorf("%w: bad format", domain.ErrInvalidCursor)
	}

	if !verifySignature(secret, parts[0], parts[1]) {
		return cursor, fmt.Errorf("%w: bad signature", domain.ErrInvalidCursor)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[0])

	if err != nil {
		return cursor, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	if err := json.Unmarshal(decoded, &cursor); err != nil {
		return cursor, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}

	if cursor.Offset < 0 {
		return cursor, fmt.Errorf("%w: negative offset", domain.ErrInvalidCursor)
	}

	return cursor, nil
}

// QueryFingerprint identifies the shape of a list query so a cursor
// cannot be replayed against a different filter or sort.
func QueryFingerprint(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
