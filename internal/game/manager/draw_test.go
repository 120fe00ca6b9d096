package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bingoloco/backend/internal/game/bingo"
	"github.com/bingoloco/backend/internal/game/caller"
	"github.com/bingoloco/backend/internal/game/models"
)

// playOrderPrizes returns the three tiers already sorted the way StartGame
// sorts them: highest id, easiest pattern first.
func playOrderPrizes() []models.Prize {
	return []models.Prize{
		{ID: 3, Name: "Tercer Premio", Amount: "0.00", Pattern: bingo.PatternFourCorners},
		{ID: 2, Name: "Segundo Premio", Amount: "0.00", Pattern: bingo.PatternAnyLine},
		{ID: 1, Name: "Primer Premio", Amount: "0.00", Pattern: bingo.PatternFullCard},
	}
}

// testCard is a deterministic valid card with corners 1, 61, 5 and 65.
func testCard() bingo.Card {
	return bingo.Card{
		{1, 16, 31, 46, 61},
		{2, 17, 32, 47, 62},
		{3, 18, bingo.FreeCell, 48, 63},
		{4, 19, 34, 49, 64},
		{5, 20, 35, 50, 65},
	}
}

func addConfirmedPlayer(gm *GameManager, id, name string, cards ...bingo.PoolCard) *models.Player {
	player := &models.Player{
		ID:     id,
		Name:   name,
		Cards:  cards,
		Status: models.PlayerStatusConfirmed,
		Dauber: models.DauberStar,
	}
	gm.players = append(gm.players, player)
	return player
}

// callAllExcept marks every number as already called except the given ones,
// which forces the next draw to pick from exactly that remainder.
func callAllExcept(gm *GameManager, except ...int) {
	skip := make(map[int]bool, len(except))
	for _, n := range except {
		skip[n] = true
	}
	for n := 1; n <= bingo.MaxNumber; n++ {
		if !skip[n] {
			gm.calledNumbers[n] = true
		}
	}
}

func TestDrawOutsidePlayingPhaseIsNoOp(t *testing.T) {
	gm := newTestManager(t)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Empty(t, gm.AdminState().CalledNumbers)
}

func TestDrawExhaustedIsNoOp(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	callAllExcept(gm)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Len(t, gm.AdminState().CalledNumbers, 75)
}

func TestDrawSingleNumber(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	callAllExcept(gm, 42)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)

	state := gm.AdminState()
	assert.Equal(t, []int{42}, state.LastDrawnNumbers)
	assert.Len(t, state.CalledNumbers, 75)
	assert.Equal(t, "¡Salió el N-42!", state.CallerMessage)
}

func TestDrawBombCascade(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	callAllExcept(gm, 7, 23, 55, 70)
	gm.bombNumbers = map[int]bool{7: true, 23: true, 55: true, 70: true}

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)

	state := gm.AdminState()
	// The primary bomb number pulls two extras with it, in one batch
	assert.Len(t, state.LastDrawnNumbers, 3)
	assert.Equal(t, caller.BombAnnouncement, state.CallerMessage)
	for _, n := range state.LastDrawnNumbers {
		assert.Contains(t, []int{7, 23, 55, 70}, n)
	}
}

func TestDrawBombNearExhaustion(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	callAllExcept(gm, 7, 23)
	gm.bombNumbers = map[int]bool{7: true, 23: true}

	_, err := gm.Draw(context.Background())
	require.NoError(t, err)

	// Only one extra remained; the cascade is capped, never an error
	state := gm.AdminState()
	assert.Len(t, state.LastDrawnNumbers, 2)
	assert.Len(t, state.CalledNumbers, 75)
}

func TestDrawExtrasDoNotCascade(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	callAllExcept(gm, 7, 23, 55, 70, 12)
	// Every remaining number is a bomb; a chain reaction would drain all five
	gm.bombNumbers = map[int]bool{7: true, 23: true, 55: true, 70: true, 12: true}

	_, err := gm.Draw(context.Background())
	require.NoError(t, err)

	assert.Len(t, gm.AdminState().LastDrawnNumbers, 3)
}

func TestDrawDetectsWinner(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	addConfirmedPlayer(gm, "p1", "Ana", bingo.PoolCard{ID: "BL-001", Card: testCard()})

	// Corners are 1, 61, 5, 65; holding back 65 forces it as the next draw
	callAllExcept(gm, 65)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)

	require.NotNil(t, winner)
	assert.Equal(t, 3, winner.Prize.ID)
	assert.Equal(t, bingo.PatternFourCorners, winner.Prize.Pattern)
	assert.Equal(t, "Ana", winner.Player.Name)
	assert.Equal(t, "BL-001", winner.WinningCardID)

	state := gm.AdminState()
	require.Len(t, state.Winners, 1)
	assert.Equal(t, models.PhasePlaying, state.GamePhase)
}

func TestDrawPendingPlayersCannotWin(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()
	player := addConfirmedPlayer(gm, "p1", "Ana", bingo.PoolCard{ID: "BL-001", Card: testCard()})
	player.Status = models.PlayerStatusPending

	callAllExcept(gm, 65)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Empty(t, gm.AdminState().Winners)
}

func TestDrawOneRecordPerPlayerPerPrize(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()

	// Both cards complete four corners on the same draw
	addConfirmedPlayer(gm, "p1", "Ana",
		bingo.PoolCard{ID: "BL-001", Card: testCard()},
		bingo.PoolCard{ID: "BL-002", Card: testCard()},
	)

	callAllExcept(gm, 65)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)

	require.NotNil(t, winner)
	assert.Equal(t, "BL-001", winner.WinningCardID)
	assert.Len(t, gm.AdminState().Winners, 1)
}

func TestDrawMultipleWinnersSameDraw(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = playOrderPrizes()

	addConfirmedPlayer(gm, "p1", "Ana", bingo.PoolCard{ID: "BL-001", Card: testCard()})
	addConfirmedPlayer(gm, "p2", "Beto", bingo.PoolCard{ID: "BL-002", Card: testCard()})

	callAllExcept(gm, 65)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)

	// Both are recorded; the first found is returned for the notification
	require.NotNil(t, winner)
	assert.Equal(t, "Ana", winner.Player.Name)

	state := gm.AdminState()
	require.Len(t, state.Winners, 2)
	assert.Equal(t, "Ana", state.Winners[0].Player.Name)
	assert.Equal(t, "Beto", state.Winners[1].Player.Name)
}

func TestDrawGameOverWhenAllPrizesWon(t *testing.T) {
	gm := newTestManager(t)
	gm.phase = models.PhasePlaying
	gm.prizes = []models.Prize{
		{ID: 3, Name: "Premio Único", Amount: "0.00", Pattern: bingo.PatternFourCorners},
	}
	addConfirmedPlayer(gm, "p1", "Ana", bingo.PoolCard{ID: "BL-001", Card: testCard()})

	callAllExcept(gm, 65)

	winner, err := gm.Draw(context.Background())
	require.NoError(t, err)
	require.NotNil(t, winner)

	state := gm.AdminState()
	assert.Equal(t, models.PhaseGameOver, state.GamePhase)

	// The game is over; further draws mutate nothing
	winner, err = gm.Draw(context.Background())
	require.NoError(t, err)
	assert.Nil(t, winner)
	assert.Len(t, gm.AdminState().CalledNumbers, 75)
}
