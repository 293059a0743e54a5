package memorial

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Variant names one of the two tribute collections.
type Variant string

const (
	VariantFlower Variant = "flower"
	VariantLeaf   Variant = "leaf"
)

// Plural returns the collection name used in paths and messages.
func (v Variant) Plural() string {
	switch v {
	case VariantFlower:
		return "flowers"
	case VariantLeaf:
		return "leaves"
	default:
		return string(v) + "s"
	}
}

// MaxContentLength bounds flower content, counted in characters.
const MaxContentLength = 200

const legacyTimestampLayout = "2006-01-02T15:04:05"

// Tribute is the shape shared by flowers and leaves.
type Tribute struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Key returns the server-assigned id.
func (t Tribute) Key() int64 {
	return t.ID
}

// ParsedCreatedAt returns CreatedAt as time.Time, or the zero time when the
// server sent something unparseable.
func (t Tribute) ParsedCreatedAt() time.Time {
	return parseTime(t.CreatedAt)
}

func (t Tribute) valid() bool {
	return t.ID > 0 && strings.TrimSpace(t.Content) != ""
}

// Flower is a visitor-authored tribute.
type Flower struct {
	Tribute
}

// Leaf is a tribute whose phrase is chosen by the server.
type Leaf struct {
	Tribute
}

// NewFlower builds a Flower; used by tests and the dev server.
func NewFlower(id int64, content, createdAt string) Flower {
	return Flower{Tribute{ID: id, Content: content, CreatedAt: createdAt}}
}

// NewLeaf builds a Leaf; used by tests and the dev server.
func NewLeaf(id int64, content, createdAt string) Leaf {
	return Leaf{Tribute{ID: id, Content: content, CreatedAt: createdAt}}
}

// NormalizeContent trims content and limits it to MaxContentLength characters.
// The boolean is false when nothing is left after trimming.
func NormalizeContent(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", false
	}
	if utf8.RuneCountInString(trimmed) > MaxContentLength {
		runes := []rune(trimmed)
		trimmed = strings.TrimSpace(string(runes[:MaxContentLength]))
	}
	return trimmed, true
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// Some backends emit LocalDateTime without an offset.
	if t, err := time.ParseInLocation(legacyTimestampLayout, trimFraction(value), time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func trimFraction(value string) string {
	if idx := strings.IndexByte(value, '.'); idx > 0 {
		return value[:idx]
	}
	return value
}
