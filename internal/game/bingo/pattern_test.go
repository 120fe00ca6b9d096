package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedCard returns a deterministic valid card:
//
//	B   I   N   G   O
//	1   16  31  46  61
//	2   17  32  47  62
//	3   18  *   48  63
//	4   19  34  49  64
//	5   20  35  50  65
func fixedCard() Card {
	return Card{
		{1, 16, 31, 46, 61},
		{2, 17, 32, 47, 62},
		{3, 18, FreeCell, 48, 63},
		{4, 19, 34, 49, 64},
		{5, 20, 35, 50, 65},
	}
}

func calledSet(numbers ...int) map[int]bool {
	called := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		called[n] = true
	}
	return called
}

func TestCheckWinAnyLine(t *testing.T) {
	card := fixedCard()

	// Top row
	assert.True(t, CheckWin(card, calledSet(1, 16, 31, 46, 61), PatternAnyLine))

	// Middle row crosses the free center
	assert.True(t, CheckWin(card, calledSet(3, 18, 48, 63), PatternAnyLine))

	// B column
	assert.True(t, CheckWin(card, calledSet(1, 2, 3, 4, 5), PatternAnyLine))

	// Main diagonal crosses the free center
	assert.True(t, CheckWin(card, calledSet(1, 17, 49, 65), PatternAnyLine))

	// Anti-diagonal
	assert.True(t, CheckWin(card, calledSet(61, 47, 19, 5), PatternAnyLine))

	// Four called but scattered
	assert.False(t, CheckWin(card, calledSet(1, 17, 48, 64), PatternAnyLine))

	assert.False(t, CheckWin(card, calledSet(), PatternAnyLine))
}

func TestCheckWinFourCorners(t *testing.T) {
	card := fixedCard()

	assert.True(t, CheckWin(card, calledSet(1, 61, 5, 65), PatternFourCorners))
	assert.False(t, CheckWin(card, calledSet(1, 61, 5), PatternFourCorners))
	assert.False(t, CheckWin(card, calledSet(), PatternFourCorners))
}

func TestCheckWinFullCard(t *testing.T) {
	card := fixedCard()

	all := calledSet(
		1, 2, 3, 4, 5,
		16, 17, 18, 19, 20,
		31, 32, 34, 35,
		46, 47, 48, 49, 50,
		61, 62, 63, 64, 65,
	)
	assert.True(t, CheckWin(card, all, PatternFullCard))

	delete(all, 34)
	assert.False(t, CheckWin(card, all, PatternFullCard))
}

func TestCheckWinMonotonic(t *testing.T) {
	card := fixedCard()

	called := calledSet(1, 16, 31, 46, 61)
	assert.True(t, CheckWin(card, called, PatternAnyLine))

	// More numbers never revoke a win
	for n := 1; n <= MaxNumber; n++ {
		called[n] = true
	}
	assert.True(t, CheckWin(card, called, PatternAnyLine))
	assert.True(t, CheckWin(card, called, PatternFourCorners))
	assert.True(t, CheckWin(card, called, PatternFullCard))
}

func TestCheckWinUnknownPattern(t *testing.T) {
	called := calledSet(1, 2, 3)
	assert.False(t, CheckWin(fixedCard(), called, Pattern("BLACKOUT")))
}
