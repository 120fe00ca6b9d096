package manager

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/config"
	"github.com/bingoloco/backend/internal/game/bingo"
	"github.com/bingoloco/backend/internal/game/caller"
	"github.com/bingoloco/backend/internal/game/models"
)

// Validation errors surfaced to the caller. The duplicate-name message is
// user-facing and guides the player to disambiguate.
var (
	ErrDuplicateName = errors.New("ya existe un jugador con este nombre. Por favor, elige otro (ej: Victor 2)")
	ErrCardConflict  = errors.New("one or more selected cards are already reserved by another player")
	ErrUnknownCard   = errors.New("selected card is not part of the current pool")
	ErrEmptyName     = errors.New("player name must not be empty")
	ErrNoCards       = errors.New("at least one card must be selected")
)

// SnapshotStore persists full-state snapshots at operation boundaries.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap models.AdminState) error
}

// StateCache caches the public projection and publishes draw events.
type StateCache interface {
	CachePublicState(ctx context.Context, state models.PublicState) error
	PublishDraw(ctx context.Context, numbers []int) error
}

// Broadcaster pushes public-state updates to connected viewers.
type Broadcaster interface {
	BroadcastPublicState(state models.PublicState)
}

// GameManager owns the authoritative in-memory game state. Every mutating
// operation runs to completion under the state mutex, so callers only ever
// observe a fully-consistent post-operation state.
type GameManager struct {
	ctx       context.Context
	cfg       config.GameConfig
	logger    *zap.SugaredLogger
	announcer caller.Provider
	store     SnapshotStore
	cache     StateCache
	hub       Broadcaster

	mu     sync.Mutex
	drawMu sync.Mutex // serializes draws across the announcement suspension point

	phase           models.GamePhase
	prizes          []models.Prize
	players         []*models.Player
	winners         []models.Winner
	cardPool        []bingo.PoolCard
	assignedCardIDs map[string]bool
	cardPoolSize    int
	cardPrice       float64
	distribution    models.PrizeDistribution
	calledNumbers   map[int]bool
	lastDrawn       []int
	bombNumbers     map[int]bool
	callerMessage   string
	totalRevenue    float64
	houseCut        float64
	settings        models.Settings

	rng *rand.Rand
	now func() time.Time
}

// NewGameManager creates a game manager with a freshly generated card pool.
func NewGameManager(ctx context.Context, cfg config.GameConfig, announcer caller.Provider, logger *zap.SugaredLogger) *GameManager {
	gm := &GameManager{
		ctx:             ctx,
		cfg:             cfg,
		logger:          logger,
		announcer:       announcer,
		phase:           models.PhaseSetup,
		prizes:          models.DefaultPrizes(),
		assignedCardIDs: make(map[string]bool),
		cardPoolSize:    cfg.DefaultPoolSize,
		cardPrice:       cfg.DefaultCardPrice,
		distribution:    models.DefaultDistribution(),
		calledNumbers:   make(map[int]bool),
		lastDrawn:       []int{},
		bombNumbers:     make(map[int]bool),
		settings:        models.DefaultSettings(),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		now:             time.Now,
	}

	gm.cardPool = bingo.GeneratePool(gm.cardPoolSize, gm.rng)
	gm.logger.Infof("Game manager initialized with a pool of %d cards", len(gm.cardPool))

	return gm
}

// SetSnapshotStore sets the persistence collaborator for the game manager
func (gm *GameManager) SetSnapshotStore(store SnapshotStore) {
	gm.store = store
	gm.logger.Info("Snapshot store set for game manager")
}

// SetStateCache sets the cache/pub-sub collaborator for the game manager
func (gm *GameManager) SetStateCache(cache StateCache) {
	gm.cache = cache
	gm.logger.Info("State cache set for game manager")
}

// SetBroadcaster sets the viewer push channel for the game manager
func (gm *GameManager) SetBroadcaster(hub Broadcaster) {
	gm.hub = hub
	gm.logger.Info("Broadcaster set for game manager")
}

// GeneratePool regenerates the card pool at the current configured size.
// This is destructive: all players are cleared and every card assignment
// is invalidated.
func (gm *GameManager) GeneratePool() {
	gm.mu.Lock()
	gm.players = nil
	gm.assignedCardIDs = make(map[string]bool)
	gm.cardPool = bingo.GeneratePool(gm.cardPoolSize, gm.rng)
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.logger.Infof("Regenerated card pool with %d cards; all players cleared", len(admin.CardPool))
	gm.publish(admin, public)
}

// AddPlayer creates a pending reservation for the named player holding the
// selected pool cards. Names are unique case-insensitively after trimming.
// Card assignment exclusivity is re-validated here: selecting a card that is
// already reserved fails with ErrCardConflict rather than double-assigning.
func (gm *GameManager) AddPlayer(name string, cardIDs []string) (*models.Player, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyName
	}
	if len(cardIDs) == 0 {
		return nil, ErrNoCards
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()

	// Free any lapsed reservations before checking for conflicts
	gm.sweepExpiredLocked()

	lowered := strings.ToLower(trimmed)
	for _, p := range gm.players {
		if strings.ToLower(strings.TrimSpace(p.Name)) == lowered {
			return nil, ErrDuplicateName
		}
	}

	poolByID := make(map[string]bingo.PoolCard, len(gm.cardPool))
	for _, pc := range gm.cardPool {
		poolByID[pc.ID] = pc
	}

	cards := make([]bingo.PoolCard, 0, len(cardIDs))
	for _, id := range cardIDs {
		pc, ok := poolByID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCard, id)
		}
		if gm.assignedCardIDs[id] {
			return nil, fmt.Errorf("%w: %s", ErrCardConflict, id)
		}
		cards = append(cards, pc)
	}

	expiry := gm.now().Add(time.Duration(gm.cfg.ReservationMinutes) * time.Minute)
	player := &models.Player{
		ID:                uuid.New().String(),
		Name:              trimmed,
		Cards:             cards,
		Status:            models.PlayerStatusPending,
		Dauber:            models.DauberStar,
		ReservationExpiry: &expiry,
	}

	gm.players = append(gm.players, player)
	for _, pc := range cards {
		gm.assignedCardIDs[pc.ID] = true
	}

	gm.logger.Infof("Player %s reserved %d cards, expires %s", trimmed, len(cards), expiry.Format(time.RFC3339))

	copied := *player
	return &copied, nil
}

// ConfirmPayment transitions a pending player to confirmed and clears the
// reservation expiry. Unknown or already-confirmed players are a no-op.
func (gm *GameManager) ConfirmPayment(playerID string) {
	gm.mu.Lock()
	player := gm.findPlayerLocked(playerID)
	if player == nil {
		// Player may have expired in the meantime; not an error.
		gm.mu.Unlock()
		gm.logger.Warnf("ConfirmPayment: player %s not found, ignoring", playerID)
		return
	}
	player.Status = models.PlayerStatusConfirmed
	player.ReservationExpiry = nil
	name, cardCount := player.Name, len(player.Cards)
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.logger.Infof("Player %s (%s) confirmed with %d cards", name, playerID, cardCount)
	gm.publish(admin, public)
}

// CancelOrder removes a player regardless of status and releases their
// cards back to the unassigned pool. Unknown players are a no-op, so
// cancelling twice does not double-release anything.
func (gm *GameManager) CancelOrder(playerID string) {
	gm.mu.Lock()
	idx := -1
	for i, p := range gm.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		gm.mu.Unlock()
		gm.logger.Warnf("CancelOrder: player %s not found, ignoring", playerID)
		return
	}
	cancelled := gm.players[idx]
	gm.players = append(gm.players[:idx], gm.players[idx+1:]...)
	gm.releaseCardsLocked(cancelled)
	name, cardCount := cancelled.Name, len(cancelled.Cards)
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.logger.Infof("Cancelled order for player %s, released %d cards", name, cardCount)
	gm.publish(admin, public)
}

// FindPlayerByName looks a player up by trimmed, case-insensitive name.
// Expired reservations are swept first. Returns a copy, or nil when no
// such player exists.
func (gm *GameManager) FindPlayerByName(name string) *models.Player {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.sweepExpiredLocked()

	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, p := range gm.players {
		if strings.ToLower(strings.TrimSpace(p.Name)) == lowered {
			copied := *p
			return &copied
		}
	}
	return nil
}

// ChangeDauber updates a player's marker choice. Unknown players and
// invalid daubers are a no-op.
func (gm *GameManager) ChangeDauber(playerID string, dauber models.Dauber) {
	if !dauber.Valid() {
		gm.logger.Warnf("ChangeDauber: invalid dauber %q, ignoring", dauber)
		return
	}
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if player := gm.findPlayerLocked(playerID); player != nil {
		player.Dauber = dauber
	}
}

// SetCardPoolSize updates the configured pool size. The current pool is not
// regenerated until the next GeneratePool or ResetGame.
func (gm *GameManager) SetCardPoolSize(size int) {
	gm.mu.Lock()
	gm.cardPoolSize = size
	gm.mu.Unlock()
}

// SetCardPrice updates the per-card price and recomputes revenue. Existing
// confirmed orders are not retroactively repriced card-by-card; the revenue
// totals simply reflect the new price.
func (gm *GameManager) SetCardPrice(price float64) {
	gm.mu.Lock()
	gm.cardPrice = price
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.publish(admin, public)
}

// UpdatePrizeDistribution sets the percentage for one tier. The tiers are
// not forced to sum to 100; validation is advisory and belongs to the
// presentation layer.
func (gm *GameManager) UpdatePrizeDistribution(tier string, percentage float64) error {
	gm.mu.Lock()
	switch tier {
	case "first":
		gm.distribution.First = percentage
	case "second":
		gm.distribution.Second = percentage
	case "third":
		gm.distribution.Third = percentage
	case "house":
		gm.distribution.House = percentage
	default:
		gm.mu.Unlock()
		return fmt.Errorf("unknown prize tier: %s", tier)
	}
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.publish(admin, public)
	return nil
}

// UpdateSettings applies a partial settings update.
func (gm *GameManager) UpdateSettings(patch models.SettingsPatch) {
	gm.mu.Lock()
	if patch.BingoName != nil {
		gm.settings.BingoName = *patch.BingoName
	}
	if patch.LogoURL != nil {
		gm.settings.LogoURL = *patch.LogoURL
	}
	if patch.DeveloperName != nil {
		gm.settings.DeveloperName = *patch.DeveloperName
	}
	if patch.AdminPhoneNumber != nil {
		gm.settings.AdminPhoneNumber = *patch.AdminPhoneNumber
	}
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.publish(admin, public)
}

// StartGame re-sorts the prizes into play order (highest id, easiest
// pattern first), secretly picks the bomb numbers and moves the game to
// PLAYING. Starting with no confirmed players is a silent no-op; the
// presentation layer guards the button.
func (gm *GameManager) StartGame() {
	gm.mu.Lock()

	confirmed := 0
	for _, p := range gm.players {
		if p.Status == models.PlayerStatusConfirmed {
			confirmed++
		}
	}
	if confirmed == 0 {
		gm.mu.Unlock()
		gm.logger.Warn("StartGame requested with no confirmed players, ignoring")
		return
	}

	sort.Slice(gm.prizes, func(i, j int) bool { return gm.prizes[i].ID > gm.prizes[j].ID })

	gm.bombNumbers = make(map[int]bool, gm.cfg.BombsPerGame)
	for _, idx := range gm.rng.Perm(bingo.MaxNumber)[:gm.cfg.BombsPerGame] {
		gm.bombNumbers[idx+1] = true
	}

	gm.phase = models.PhasePlaying
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.logger.Infof("Game started with %d confirmed players and %d bomb numbers", confirmed, gm.cfg.BombsPerGame)
	gm.publish(admin, public)
}

// ResetGame clears the game run (players, winners, called numbers, bomb
// set), restores prizes to SETUP order, regenerates the pool and returns
// the phase to SETUP. Pool size, price, distribution and settings survive.
func (gm *GameManager) ResetGame() {
	gm.mu.Lock()
	gm.phase = models.PhaseSetup
	gm.players = nil
	gm.winners = nil
	gm.calledNumbers = make(map[int]bool)
	gm.lastDrawn = []int{}
	gm.callerMessage = ""
	gm.assignedCardIDs = make(map[string]bool)
	gm.cardPool = bingo.GeneratePool(gm.cardPoolSize, gm.rng)
	gm.bombNumbers = make(map[int]bool)
	gm.prizes = models.DefaultPrizes()
	gm.recomputeRevenueLocked()
	admin, public := gm.projectionsLocked()
	gm.mu.Unlock()

	gm.logger.Info("Game reset to SETUP phase")
	gm.publish(admin, public)
}

// findPlayerLocked returns the live player record, or nil. Callers must
// hold gm.mu.
func (gm *GameManager) findPlayerLocked(playerID string) *models.Player {
	for _, p := range gm.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// releaseCardsLocked returns a player's cards to the unassigned pool.
func (gm *GameManager) releaseCardsLocked(player *models.Player) {
	for _, pc := range player.Cards {
		delete(gm.assignedCardIDs, pc.ID)
	}
}

// publish pushes fresh projections to the optional collaborators. All of
// them are best-effort: persistence or cache failures are logged, never
// propagated to the mutating operation.
func (gm *GameManager) publish(admin models.AdminState, public models.PublicState) {
	if gm.store != nil {
		ctx, cancel := context.WithTimeout(gm.ctx, 5*time.Second)
		if err := gm.store.SaveSnapshot(ctx, admin); err != nil {
			gm.logger.Errorf("Failed to persist state snapshot: %v", err)
		}
		cancel()
	}
	if gm.cache != nil {
		ctx, cancel := context.WithTimeout(gm.ctx, 3*time.Second)
		if err := gm.cache.CachePublicState(ctx, public); err != nil {
			gm.logger.Errorf("Failed to cache public state: %v", err)
		}
		cancel()
	}
	if gm.hub != nil {
		gm.hub.BroadcastPublicState(public)
	}
}
