package gameid

import (
	"regexp"
	"strings"
	"time"

	"cryptogram-sync/core/syncerr"

	"github.com/google/uuid"
)

const (
	uuidLength     = 36
	dailyMarker    = "-daily-"
	hardcoreMarker = "-hardcore-"
)

// dailyPattern matches the date segment and the trailing token of a daily identifier.
var dailyPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)

// Encode builds the string form of id for the given variant.
// A variant that fails Validate is encoded as a bare UUID, so the result always decodes.
func Encode(id uuid.UUID, v Variant) string {
	if v.Validate() != nil {
		return id.String()
	}
	switch v.Kind {
	case KindPlain:
		return v.Difficulty + "-" + id.String()
	case KindHardcore:
		return v.Difficulty + hardcoreMarker + id.String()
	case KindDaily:
		return v.Difficulty + dailyMarker + v.Date + "-" + id.String()
	default:
		return id.String()
	}
}

// Decode parses an identifier produced by Encode, or by any historical format that shares it.
// It returns a syncerr.InvalidIdentifier error for malformed input.
func Decode(s string) (uuid.UUID, Variant, error) {
	s = strings.TrimSpace(s)

	// 1. Daily: "-daily-" followed by a date
	if idx := strings.Index(s, dailyMarker); idx >= 0 {
		difficulty := s[:idx]
		m := dailyPattern.FindStringSubmatch(s[idx+len(dailyMarker):])
		if m == nil {
			return uuid.Nil, Variant{}, invalid(s, "daily identifier without date")
		}
		if _, err := time.Parse(DateLayout, m[1]); err != nil {
			return uuid.Nil, Variant{}, invalid(s, "daily identifier with invalid date "+m[1])
		}
		id, err := parseToken(s, m[2])
		if err != nil {
			return uuid.Nil, Variant{}, err
		}
		return id, Variant{Kind: KindDaily, Difficulty: difficulty, Date: m[1]}, nil
	}

	// 2. Hardcore
	if idx := strings.Index(s, hardcoreMarker); idx >= 0 {
		id, err := parseToken(s, s[idx+len(hardcoreMarker):])
		if err != nil {
			return uuid.Nil, Variant{}, err
		}
		return id, Hardcore(s[:idx]), nil
	}

	// 3. Plain: a known difficulty prefix
	for _, d := range Difficulties {
		if rest, ok := strings.CutPrefix(s, d+"-"); ok && len(rest) == uuidLength {
			id, err := parseToken(s, rest)
			if err != nil {
				return uuid.Nil, Variant{}, err
			}
			return id, Plain(d), nil
		}
	}

	// 4. Bare
	id, err := parseToken(s, s)
	if err != nil {
		return uuid.Nil, Variant{}, err
	}
	return id, Bare(), nil
}

// Canonical decodes s and returns only the canonical UUID string.
func Canonical(s string) (string, error) {
	id, _, err := Decode(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// parseToken validates the canonical UUID layout before handing the token to uuid.Parse,
// which would otherwise also accept braces, URNs and hyphen-less forms.
func parseToken(raw, token string) (uuid.UUID, error) {
	if len(token) != uuidLength {
		return uuid.Nil, invalid(raw, "uuid segment must be 36 characters")
	}
	for i := 0; i < len(token); i++ {
		isHyphenPos := i == 8 || i == 13 || i == 18 || i == 23
		if isHyphenPos != (token[i] == '-') {
			return uuid.Nil, invalid(raw, "uuid segment has misplaced hyphens")
		}
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, syncerr.New(syncerr.InvalidIdentifier, "decode_id", raw, err)
	}
	return id, nil
}

func invalid(raw, msg string) error {
	return syncerr.Newf(syncerr.InvalidIdentifier, "decode_id", raw, "%s", msg)
}
