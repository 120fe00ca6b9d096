package manager

import (
	"context"
	"time"

	"github.com/bingoloco/backend/internal/game/bingo"
	"github.com/bingoloco/backend/internal/game/caller"
	"github.com/bingoloco/backend/internal/game/models"
)

// Draw selects the next number(s), updates the called set and scans every
// confirmed player's cards against the currently active prize pattern.
//
// The operation is two-phase: the state mutation is applied synchronously
// under the state mutex, then the announcement phrase is fetched with a
// bounded timeout before the result is returned. drawMu serializes whole
// draws so a second concurrent draw cannot interleave with the suspension
// point of the announcement fetch.
//
// The returned winner is the first one found this draw, reserved for UI
// notification; every winner is persisted regardless.
func (gm *GameManager) Draw(ctx context.Context) (*models.Winner, error) {
	gm.drawMu.Lock()
	defer gm.drawMu.Unlock()

	gm.mu.Lock()

	available := make([]int, 0, bingo.MaxNumber)
	for n := 1; n <= bingo.MaxNumber; n++ {
		if !gm.calledNumbers[n] {
			available = append(available, n)
		}
	}

	// Not playing, exhausted or fully won: no winner, no mutation.
	if gm.phase != models.PhasePlaying || len(available) == 0 || len(gm.winners) >= len(gm.prizes) {
		gm.mu.Unlock()
		return nil, nil
	}

	primary := available[gm.rng.Intn(len(available))]
	drawn := []int{primary}

	// Only the primary number triggers the bomb cascade; the extras are
	// never bomb-checked or re-triggered themselves.
	isBomb := gm.bombNumbers[primary]
	if isBomb {
		rest := make([]int, 0, len(available)-1)
		for _, n := range available {
			if n != primary {
				rest = append(rest, n)
			}
		}
		gm.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
		extra := gm.cfg.BombCount - 1
		if extra > len(rest) {
			extra = len(rest)
		}
		drawn = append(drawn, rest[:extra]...)
	}

	gm.lastDrawn = drawn
	for _, n := range drawn {
		gm.calledNumbers[n] = true
	}

	var firstWinner *models.Winner
	if current := gm.currentPrizeLocked(); current != nil {
		prize := *current
		for _, player := range gm.players {
			if player.Status != models.PlayerStatusConfirmed {
				continue
			}
			for _, cardData := range player.Cards {
				if !bingo.CheckWin(cardData.Card, gm.calledNumbers, prize.Pattern) {
					continue
				}
				// One winner record per (prize, player) pair; appending
				// immediately means a later card in this same scan sees
				// the updated list and won't double-award the player.
				if gm.hasWinnerLocked(prize.ID, player.ID) {
					continue
				}
				winner := models.Winner{
					Prize:         prize,
					Player:        *player,
					WinningCardID: cardData.ID,
				}
				gm.winners = append(gm.winners, winner)
				gm.logger.Infof("Player %s won %s with card %s", player.Name, prize.Name, cardData.ID)
				if firstWinner == nil {
					firstWinner = &winner
				}
			}
		}
	}

	if len(gm.winners) >= len(gm.prizes) {
		gm.phase = models.PhaseGameOver
		gm.logger.Info("All prizes won, game over")
	}

	gm.mu.Unlock()

	// Phase two: fetch the announcement with a hard timeout. Provider
	// failures fall back to the deterministic phrase and never fail the
	// draw itself.
	message := caller.BombAnnouncement
	if !isBomb {
		announceCtx, cancel := context.WithTimeout(ctx, announceTimeout)
		phrase, err := gm.announcer.Announce(announceCtx, primary)
		cancel()
		if err != nil {
			gm.logger.Warnf("Announcement provider failed for number %d: %v", primary, err)
			phrase = caller.Fallback(primary)
		}
		message = phrase
	}

	gm.mu.Lock()
	gm.callerMessage = message
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.publish(admin, public)
	if gm.cache != nil {
		publishCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := gm.cache.PublishDraw(publishCtx, drawn); err != nil {
			gm.logger.Errorf("Failed to publish draw event: %v", err)
		}
		cancel()
	}

	return firstWinner, nil
}

// currentPrizeLocked returns the prize currently being played for: the
// first one in play order without a winner record. Callers must hold gm.mu.
func (gm *GameManager) currentPrizeLocked() *models.Prize {
	for i := range gm.prizes {
		won := false
		for _, w := range gm.winners {
			if w.Prize.ID == gm.prizes[i].ID {
				won = true
				break
			}
		}
		if !won {
			return &gm.prizes[i]
		}
	}
	return nil
}

// hasWinnerLocked reports whether the (prize, player) pair already has a
// winner record. Callers must hold gm.mu.
func (gm *GameManager) hasWinnerLocked(prizeID int, playerID string) bool {
	for _, w := range gm.winners {
		if w.Prize.ID == prizeID && w.Player.ID == playerID {
			return true
		}
	}
	return false
}

// announceTimeout is the hard upper bound on the provider call; the
// provider's own HTTP client timeout is usually tighter.
const announceTimeout = 5 * time.Second
