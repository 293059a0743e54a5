package memorial

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNormalizeContent(t *testing.T) {
	if _, ok := NormalizeContent("  \n\t "); ok {
		t.Fatalf("NormalizeContent accepted blank content")
	}

	got, ok := NormalizeContent("  we miss you  ")
	if !ok || got != "we miss you" {
		t.Fatalf("NormalizeContent = %q, %v; want trimmed content", got, ok)
	}

	long := strings.Repeat("花", MaxContentLength+25)
	got, ok = NormalizeContent(long)
	if !ok {
		t.Fatalf("NormalizeContent rejected long content")
	}
	if n := utf8.RuneCountInString(got); n != MaxContentLength {
		t.Fatalf("NormalizeContent length = %d, want %d", n, MaxContentLength)
	}
}

func TestParsedCreatedAt(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
	}{
		{"2025-05-01T10:00:00Z", false},
		{"2025-05-01T10:00:00.123456+02:00", false},
		{"2025-05-01T10:00:00.123", false},
		{"yesterday", true},
		{"", true},
	}
	for _, tc := range cases {
		got := Tribute{CreatedAt: tc.in}.ParsedCreatedAt()
		if got.IsZero() != tc.zero {
			t.Fatalf("ParsedCreatedAt(%q) = %v, zero=%v want %v", tc.in, got, got.IsZero(), tc.zero)
		}
	}

	got := Tribute{CreatedAt: "2025-05-01T10:00:00Z"}.ParsedCreatedAt()
	if !got.Equal(time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("ParsedCreatedAt = %v", got)
	}
}

func TestVariantPlural(t *testing.T) {
	if VariantFlower.Plural() != "flowers" || VariantLeaf.Plural() != "leaves" {
		t.Fatalf("Plural = %q/%q", VariantFlower.Plural(), VariantLeaf.Plural())
	}
}

func TestEnvelopeValueHidesFailureData(t *testing.T) {
	env := Envelope[Flower]{Success: false, Data: NewFlower(1, "x", "")}
	if _, ok := env.Value(); ok {
		t.Fatalf("Value() on failure returned ok")
	}
	if env.Err() == nil {
		t.Fatalf("Err() on failure returned nil")
	}
	ok := Success(200, "ok", NewLeaf(2, "Thank you", ""))
	if l, present := ok.Value(); !present || l.ID != 2 || ok.Err() != nil {
		t.Fatalf("Success envelope = %#v", ok)
	}
}
