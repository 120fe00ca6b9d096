package manager

import (
	"fmt"
	"sort"

	"github.com/bingoloco/backend/internal/game/models"
)

// AdminState returns the full operator projection. Expired reservations are
// swept and revenue recomputed on every read; expiry is pull-based, so its
// staleness window equals the caller's polling interval.
func (gm *GameManager) AdminState() models.AdminState {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.sweepExpiredLocked()
	gm.recomputeRevenueLocked()
	admin, _ := gm.projectionsLocked()
	return admin
}

// PublicState returns the reduced remote-player projection.
func (gm *GameManager) PublicState() models.PublicState {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.sweepExpiredLocked()
	_, public := gm.projectionsLocked()
	return public
}

// sweepExpiredLocked removes every pending player whose reservation expiry
// has passed and releases their cards, as a single batch. Callers must hold
// gm.mu.
func (gm *GameManager) sweepExpiredLocked() {
	now := gm.now()
	kept := gm.players[:0]
	for _, p := range gm.players {
		if p.Status == models.PlayerStatusPending && p.ReservationExpiry != nil && p.ReservationExpiry.Before(now) {
			gm.releaseCardsLocked(p)
			gm.logger.Infof("Reservation for player %s expired, released %d cards", p.Name, len(p.Cards))
			continue
		}
		kept = append(kept, p)
	}
	gm.players = kept
}

// recomputeRevenueLocked derives revenue, house cut and per-prize amounts
// from confirmed sales. The distribution percentages are applied as-is,
// whether or not they sum to 100.
func (gm *GameManager) recomputeRevenueLocked() {
	totalCardsSold := 0
	for _, p := range gm.players {
		if p.Status == models.PlayerStatusConfirmed {
			totalCardsSold += len(p.Cards)
		}
	}

	revenue := float64(totalCardsSold) * gm.cardPrice
	gm.totalRevenue = revenue
	gm.houseCut = revenue * gm.distribution.House / 100

	for i := range gm.prizes {
		var pct float64
		switch gm.prizes[i].ID {
		case 1:
			pct = gm.distribution.First
		case 2:
			pct = gm.distribution.Second
		case 3:
			pct = gm.distribution.Third
		}
		gm.prizes[i].Amount = fmt.Sprintf("%.2f", revenue*pct/100)
	}
}

// projectionsLocked builds deep-copied admin and public snapshots of the
// current state. Callers must hold gm.mu.
func (gm *GameManager) projectionsLocked() (models.AdminState, models.PublicState) {
	players := make([]models.Player, len(gm.players))
	for i, p := range gm.players {
		players[i] = *p
	}

	assigned := make([]string, 0, len(gm.assignedCardIDs))
	for id := range gm.assignedCardIDs {
		assigned = append(assigned, id)
	}
	sort.Strings(assigned)

	called := sortedNumbers(gm.calledNumbers)
	bomb := sortedNumbers(gm.bombNumbers)

	prizes := make([]models.Prize, len(gm.prizes))
	copy(prizes, gm.prizes)

	winners := make([]models.Winner, len(gm.winners))
	copy(winners, gm.winners)

	lastDrawn := make([]int, len(gm.lastDrawn))
	copy(lastDrawn, gm.lastDrawn)

	admin := models.AdminState{
		GamePhase:         gm.phase,
		Prizes:            prizes,
		Players:           players,
		Winners:           winners,
		CardPool:          append(gm.cardPool[:0:0], gm.cardPool...),
		AssignedCardIDs:   assigned,
		CardPoolSize:      gm.cardPoolSize,
		CardPrice:         gm.cardPrice,
		PrizeDistribution: gm.distribution,
		CalledNumbers:     called,
		LastDrawnNumbers:  lastDrawn,
		CallerMessage:     gm.callerMessage,
		TotalRevenue:      gm.totalRevenue,
		HouseCut:          gm.houseCut,
		SpecialNumbers:    models.SpecialNumbers{Bomb: bomb},
		Settings:          gm.settings,
		CurrentTime:       gm.now(),
	}

	public := models.PublicState{
		GamePhase:        gm.phase,
		CalledNumbers:    called,
		LastDrawnNumbers: lastDrawn,
		Winners:          winners,
		Prizes:           prizes,
		CallerMessage:    gm.callerMessage,
		SpecialNumbers:   models.SpecialNumbers{Bomb: bomb},
		Settings:         gm.settings,
	}

	return admin, public
}

func sortedNumbers(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
