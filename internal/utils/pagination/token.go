package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeSeqToken creates a token for sequence-number pagination (audit trail).
func EncodeSeqToken(seq int64) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.FormatInt(seq, 10)))
}

// DecodeSeqToken parses a sequence-number pagination token.
func DecodeSeqToken(token string) (int64, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	seq, err := strconv.ParseInt(string(decodedBytes), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}
	return seq, nil
}

// EncodeTimeIDToken creates a token from a timestamp plus tie-breaking ID,
// used for journal entry listings ordered by (created_at, journal_id).
func EncodeTimeIDToken(t time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", t.Format(timeFormat), id)
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeTimeIDToken parses a token produced by EncodeTimeIDToken.
func DecodeTimeIDToken(token string) (time.Time, string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}
	ts, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (time parse): %w", err)
	}
	return ts, parts[1], nil
}
