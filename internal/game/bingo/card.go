package bingo

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	// Size is the width and height of a bingo card grid
	Size = 5

	// FreeCell is the sentinel value for the free center square
	FreeCell = 0

	// MaxNumber is the highest callable bingo number
	MaxNumber = 75

	// ColumnSpan is the size of each column's number range (B: 1-15, I: 16-30, ...)
	ColumnSpan = 15
)

// Card is a 5x5 bingo grid. Cells hold numbers in the column's B-I-N-G-O
// range, except the center cell which is always FreeCell.
type Card [Size][Size]int

// PoolCard is a card together with its pool-assigned identity label.
type PoolCard struct {
	ID   string `bson:"cardId" json:"id"`
	Card Card   `bson:"card" json:"card"`
}

// Letter returns the B/I/N/G/O column letter for a number.
func Letter(n int) string {
	switch {
	case n <= 15:
		return "B"
	case n <= 30:
		return "I"
	case n <= 45:
		return "N"
	case n <= 60:
		return "G"
	default:
		return "O"
	}
}

// ColumnRange returns the inclusive number range for a column index.
func ColumnRange(col int) (min, max int) {
	min = col*ColumnSpan + 1
	return min, min + ColumnSpan - 1
}

// NewCard generates a random card: five distinct numbers per column drawn
// from that column's range, with the center cell set free.
func NewCard(rng *rand.Rand) Card {
	var card Card
	for col := 0; col < Size; col++ {
		min, _ := ColumnRange(col)
		perm := rng.Perm(ColumnSpan)
		for row := 0; row < Size; row++ {
			card[row][col] = min + perm[row]
		}
	}
	card[Size/2][Size/2] = FreeCell
	return card
}

// Key serializes the full grid content for pool-level uniqueness checks.
func (c Card) Key() string {
	var b strings.Builder
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			fmt.Fprintf(&b, "%d,", c[row][col])
		}
	}
	return b.String()
}

// GeneratePool produces count unique cards with sequential BL-NNN labels.
// Duplicates by grid content are rejected and regenerated; the space of
// distinct cards vastly exceeds any practical pool size, so callers are
// expected to keep count reasonable rather than this function enforcing
// an upper bound.
func GeneratePool(count int, rng *rand.Rand) []PoolCard {
	pool := make([]PoolCard, 0, count)
	seen := make(map[string]struct{}, count)
	for len(pool) < count {
		card := NewCard(rng)
		key := card.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pool = append(pool, PoolCard{
			ID:   fmt.Sprintf("BL-%03d", len(pool)+1),
			Card: card,
		})
	}
	return pool
}
