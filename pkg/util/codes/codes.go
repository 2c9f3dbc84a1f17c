package codes

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidLength = errors.New("invalid code length")
)

const (
	// InviteCodeLength is the length of patient invite codes.
	InviteCodeLength = 6

	// InviteCharset is uppercase alphanumeric; codes are typed by hand so case is folded.
	InviteCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// RecordSuffixLength is the random tail of crisis_/msg_ identifiers.
	RecordSuffixLength = 6

	charsetLowerAlphanumeric = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateInviteCode draws a fresh 6-character invite code, e.g. "AB12CD".
// Uniqueness is not checked here; the registry writes it create-only.
func GenerateInviteCode() (string, error) {
	return GenerateCode(InviteCodeLength, InviteCharset)
}

// IsInviteCode reports whether s is already normalized and well formed.
func IsInviteCode(s string) bool {
	if len(s) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(InviteCharset, rune(s[i])) {
			return false
		}
	}
	return true
}

// GenerateRecordID builds ids like "crisis_1718000000000_k3x9qa": the prefix,
// the creation time in unix millis and a random suffix.
func GenerateRecordID(prefix string, now time.Time) (string, error) {
	suffix, err := GenerateCode(RecordSuffixLength, charsetLowerAlphanumeric)
	if err != nil {
		return "", err
	}
	return prefix + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix, nil
}

// GenerateCode creates a code of specified length from a given character set.
func GenerateCode(length int, charset string) (string, error) {
	if length < 1 {
		return "", ErrInvalidLength
	}
	if len(charset) == 0 {
		return "", errors.New("charset cannot be empty")
	}

	return generateFromCharset(length, charset)
}

// NormalizeCode normalizes a code for comparison (uppercase, trim whitespace).
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateFromCharset(length int, charset string) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(charset)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		result[i] = charset[n.Int64()]
	}

	return string(result), nil
}
