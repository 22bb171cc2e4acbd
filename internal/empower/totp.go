package empower

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// Empower's authenticator enrollment uses SHA-512 with the usual
// 6-digit, 30-second parameters.
const totpPeriod = 30 * time.Second

// TOTPNow returns the 6-digit SHA-512 TOTP code for the base32 secret
// at the current time.
func TOTPNow(secret string) (string, error) {
	return totpAt(secret, time.Now())
}

func totpAt(secret string, at time.Time) (string, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	normalized = strings.TrimRight(normalized, "=")
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(normalized)
	if err != nil {
		return "", fmt.Errorf("decode totp secret: %w", err)
	}

	counter := uint64(at.Unix() / int64(totpPeriod.Seconds()))
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha512.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation per RFC 4226 §5.3.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", code%1_000_000), nil
}
