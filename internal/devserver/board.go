package devserver

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/five82/wreath/internal/memorial"
)

// Phrases is the fixed set a new leaf's content is drawn from.
var Phrases = []string{
	"Thank you",
	"With gratitude",
	"We will remember",
	"With deep respect",
	"Sending my heart",
	"Warm comfort",
	"A precious gift",
	"A beautiful heart",
	"Deeply moved",
	"Sincere thanks",
	"Forever remembered",
	"A noble choice",
	"With love",
	"Blessings",
	"Rest in peace",
}

// SampleMessages seeds the board when the dev server starts with -seed.
var SampleMessages = []string{
	"Thank you for sharing the gift of life",
	"Your kindness saved lives",
	"Your choice became someone's new hope",
	"We honour your noble wish",
	"A heart like an angel's",
	"A beautiful heart, remembered forever",
	"Thank you for the gift of life",
	"Your love lives on",
	"We will remember you with deep gratitude",
	"Sincerely grateful for your generous decision",
}

var (
	errEmptyContent = errors.New("content is empty")
	errTooLong      = errors.New("content is too long")
)

// Board is the in-memory store behind the dev server.
type Board struct {
	mu         sync.Mutex
	flowers    []memorial.Flower
	leaves     []memorial.Leaf
	nextFlower int64
	nextLeaf   int64
	pick       func(n int) int
	now        func() time.Time
}

// BoardOption customizes a Board.
type BoardOption func(*Board)

// WithPicker replaces the random phrase picker.
func WithPicker(pick func(n int) int) BoardOption {
	return func(b *Board) {
		if pick != nil {
			b.pick = pick
		}
	}
}

// WithNow replaces the timestamp source.
func WithNow(now func() time.Time) BoardOption {
	return func(b *Board) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBoard returns an empty board.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{pick: rand.IntN, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Seed adds each message as a flower and one leaf per phrase.
func (b *Board) Seed() {
	for _, msg := range SampleMessages {
		_, _ = b.AddFlower(msg)
	}
	for range Phrases {
		b.AddLeaf()
	}
}

func (b *Board) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// Flowers returns a copy of every flower, oldest first.
func (b *Board) Flowers() []memorial.Flower {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]memorial.Flower{}, b.flowers...)
}

// Leaves returns a copy of every leaf, oldest first.
func (b *Board) Leaves() []memorial.Leaf {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]memorial.Leaf{}, b.leaves...)
}

// AddFlower stores a visitor message. Content over the limit is rejected
// rather than truncated.
func (b *Board) AddFlower(content string) (memorial.Flower, error) {
	normalized, ok := memorial.NormalizeContent(content)
	if !ok {
		return memorial.Flower{}, errEmptyContent
	}
	if normalized != strings.TrimSpace(content) {
		return memorial.Flower{}, errTooLong
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextFlower++
	f := memorial.NewFlower(b.nextFlower, normalized, b.timestamp())
	b.flowers = append(b.flowers, f)
	return f, nil
}

// AddLeaf stores a leaf with a phrase picked from Phrases.
func (b *Board) AddLeaf() memorial.Leaf {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextLeaf++
	phrase := Phrases[b.pick(len(Phrases))%len(Phrases)]
	l := memorial.NewLeaf(b.nextLeaf, phrase, b.timestamp())
	b.leaves = append(b.leaves, l)
	return l
}
