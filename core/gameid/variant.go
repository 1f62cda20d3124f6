package gameid

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Kind tags which identifier format a Variant uses.
type Kind int

const (
	// KindBare is a UUID with no prefix.
	KindBare Kind = iota
	// KindPlain is "<difficulty>-<uuid>".
	KindPlain
	// KindHardcore is "<difficulty>-hardcore-<uuid>".
	KindHardcore
	// KindDaily is "<difficulty>-daily-<yyyy-mm-dd>-<uuid>".
	KindDaily
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBare:
		return "bare"
	case KindPlain:
		return "plain"
	case KindHardcore:
		return "hardcore"
	case KindDaily:
		return "daily"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DateLayout is the layout of the date segment of daily identifiers.
const DateLayout = "2006-01-02"

// Known difficulty prefixes.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// Difficulties lists the prefixes recognised when decoding plain identifiers.
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert}

// IsDifficulty reports whether s is a known difficulty prefix.
func IsDifficulty(s string) bool {
	for _, d := range Difficulties {
		if d == s {
			return true
		}
	}
	return false
}

// Variant describes how a game identifier is wrapped.
// Difficulty is empty for KindBare; Date is set only for KindDaily.
type Variant struct {
	Kind       Kind
	Difficulty string
	// Date is the puzzle day formatted with DateLayout.
	Date string
}

// Bare returns the variant for an unprefixed UUID.
func Bare() Variant {
	return Variant{Kind: KindBare}
}

// Plain returns the variant for a regular game of the given difficulty.
func Plain(difficulty string) Variant {
	return Variant{Kind: KindPlain, Difficulty: difficulty}
}

// Hardcore returns the variant for a hardcore game of the given difficulty.
func Hardcore(difficulty string) Variant {
	return Variant{Kind: KindHardcore, Difficulty: difficulty}
}

// Daily returns the variant for the daily puzzle of the given day.
// Only the calendar date of day (in UTC) is kept.
func Daily(difficulty string, day time.Time) Variant {
	return Variant{Kind: KindDaily, Difficulty: difficulty, Date: day.UTC().Format(DateLayout)}
}

// IsDaily reports whether the variant is a daily puzzle.
func (v Variant) IsDaily() bool {
	return v.Kind == KindDaily
}

// IsHardcore reports whether the variant is a hardcore game.
func (v Variant) IsHardcore() bool {
	return v.Kind == KindHardcore
}

// Day parses the daily date. It returns the zero time for non-daily variants.
func (v Variant) Day() time.Time {
	if v.Kind != KindDaily {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, v.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Validate reports whether Encode can represent v in a form that Decode returns unchanged.
func (v Variant) Validate() error {
	switch v.Kind {
	case KindBare:
		if v.Difficulty != "" || v.Date != "" {
			return errors.New("bare identifiers carry no difficulty or date")
		}
	case KindPlain:
		if !IsDifficulty(v.Difficulty) {
			return fmt.Errorf("unknown difficulty %q", v.Difficulty)
		}
		if v.Date != "" {
			return errors.New("only daily identifiers carry a date")
		}
	case KindHardcore:
		if err := checkPrefix(v.Difficulty, hardcoreMarker); err != nil {
			return err
		}
		if strings.Contains(v.Difficulty+hardcoreMarker, dailyMarker) {
			return fmt.Errorf("difficulty %q reads as a daily identifier", v.Difficulty)
		}
		if v.Date != "" {
			return errors.New("only daily identifiers carry a date")
		}
	case KindDaily:
		if err := checkPrefix(v.Difficulty, dailyMarker); err != nil {
			return err
		}
		if _, err := time.Parse(DateLayout, v.Date); err != nil {
			return fmt.Errorf("invalid daily date %q", v.Date)
		}
	default:
		return fmt.Errorf("unknown identifier kind %s", v.Kind)
	}
	return nil
}

// checkPrefix rejects prefixes that would move the marker when the identifier is decoded.
func checkPrefix(difficulty, marker string) error {
	if strings.Index(difficulty+marker, marker) != len(difficulty) {
		return fmt.Errorf("difficulty %q contains %q", difficulty, strings.Trim(marker, "-"))
	}
	if difficulty != strings.TrimLeftFunc(difficulty, unicode.IsSpace) {
		return fmt.Errorf("difficulty %q starts with whitespace", difficulty)
	}
	return nil
}
