package bingo

// Pattern is a win condition evaluated against a card and the called numbers.
type Pattern string

const (
	PatternAnyLine     Pattern = "ANY_LINE"
	PatternFourCorners Pattern = "FOUR_CORNERS"
	PatternFullCard    Pattern = "FULL_CARD"
)

// CheckWin reports whether the card satisfies the pattern under the given
// called-number set. Free cells always count as matched. The check is pure
// and monotonic: once true for a called set, it stays true for supersets.
func CheckWin(card Card, called map[int]bool, pattern Pattern) bool {
	switch pattern {
	case PatternAnyLine:
		return checkAnyLine(card, called)
	case PatternFourCorners:
		return checkFourCorners(card, called)
	case PatternFullCard:
		return checkFullCard(card, called)
	default:
		return false
	}
}

func cellMatched(n int, called map[int]bool) bool {
	return n == FreeCell || called[n]
}

func checkAnyLine(card Card, called map[int]bool) bool {
	// Rows
	for row := 0; row < Size; row++ {
		complete := true
		for col := 0; col < Size; col++ {
			if !cellMatched(card[row][col], called) {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}

	// Columns
	for col := 0; col < Size; col++ {
		complete := true
		for row := 0; row < Size; row++ {
			if !cellMatched(card[row][col], called) {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}

	// Diagonals
	diag1, diag2 := true, true
	for i := 0; i < Size; i++ {
		if !cellMatched(card[i][i], called) {
			diag1 = false
		}
		if !cellMatched(card[i][Size-1-i], called) {
			diag2 = false
		}
	}
	return diag1 || diag2
}

func checkFourCorners(card Card, called map[int]bool) bool {
	// Corners are always numeric by construction
	return called[card[0][0]] &&
		called[card[0][Size-1]] &&
		called[card[Size-1][0]] &&
		called[card[Size-1][Size-1]]
}

func checkFullCard(card Card, called map[int]bool) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !cellMatched(card[row][col], called) {
				return false
			}
		}
	}
	return true
}
