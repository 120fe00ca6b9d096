package models

import (
	"time"

	"github.com/bingoloco/backend/internal/game/bingo"
)

// Player represents a buyer of one or more pool cards
type Player struct {
	ID                string           `bson:"playerId" json:"playerId"`
	Name              string           `bson:"name" json:"name"`
	Cards             []bingo.PoolCard `bson:"cards" json:"cards"`
	Status            PlayerStatus     `bson:"status" json:"status"`
	Dauber            Dauber           `bson:"dauber" json:"dauber"`
	ReservationExpiry *time.Time       `bson:"reservationExpiry,omitempty" json:"reservationExpiry,omitempty"`
}

// Prize represents one of the three fixed prize tiers. Amount is the
// computed payout, formatted as a money string.
type Prize struct {
	ID      int           `bson:"prizeId" json:"id"`
	Name    string        `bson:"name" json:"name"`
	Amount  string        `bson:"amount" json:"amount"`
	Pattern bingo.Pattern `bson:"pattern" json:"pattern"`
}

// Winner is an immutable record of a player completing the active prize
// pattern on a specific card.
type Winner struct {
	Prize         Prize  `bson:"prize" json:"prize"`
	Player        Player `bson:"player" json:"player"`
	WinningCardID string `bson:"winningCardId" json:"winningCardId"`
}

// PrizeDistribution holds the percentage split of revenue. The percentages
// are advisory and are not forced to sum to 100.
type PrizeDistribution struct {
	First  float64 `bson:"first" json:"first"`
	Second float64 `bson:"second" json:"second"`
	Third  float64 `bson:"third" json:"third"`
	House  float64 `bson:"house" json:"house"`
}

// Settings is the operator-facing branding configuration, mutable at any phase.
type Settings struct {
	BingoName        string `bson:"bingoName" json:"bingoName"`
	LogoURL          string `bson:"logoUrl" json:"logoUrl"`
	DeveloperName    string `bson:"developerName" json:"developerName"`
	AdminPhoneNumber string `bson:"adminPhoneNumber" json:"adminPhoneNumber"`
}

// SettingsPatch is a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	BingoName        *string `json:"bingoName,omitempty"`
	LogoURL          *string `json:"logoUrl,omitempty"`
	DeveloperName    *string `json:"developerName,omitempty"`
	AdminPhoneNumber *string `json:"adminPhoneNumber,omitempty"`
}

// SpecialNumbers carries the bomb set; clients learn membership only once
// a bomb number has been drawn.
type SpecialNumbers struct {
	Bomb []int `bson:"bomb" json:"bomb"`
}

// AdminState is the full-state projection for the operator view.
type AdminState struct {
	GamePhase         GamePhase         `bson:"gamePhase" json:"gamePhase"`
	Prizes            []Prize           `bson:"prizes" json:"prizes"`
	Players           []Player          `bson:"players" json:"players"`
	Winners           []Winner          `bson:"winners" json:"winners"`
	CardPool          []bingo.PoolCard  `bson:"cardPool" json:"cardPool"`
	AssignedCardIDs   []string          `bson:"assignedCardIds" json:"assignedCardIds"`
	CardPoolSize      int               `bson:"cardPoolSize" json:"cardPoolSize"`
	CardPrice         float64           `bson:"cardPrice" json:"cardPrice"`
	PrizeDistribution PrizeDistribution `bson:"prizeDistribution" json:"prizeDistribution"`
	CalledNumbers     []int             `bson:"calledNumbers" json:"calledNumbers"`
	LastDrawnNumbers  []int             `bson:"lastDrawnNumbers" json:"lastDrawnNumbers"`
	CallerMessage     string            `bson:"callerMessage" json:"callerMessage"`
	TotalRevenue      float64           `bson:"totalRevenue" json:"totalRevenue"`
	HouseCut          float64           `bson:"houseCut" json:"houseCut"`
	SpecialNumbers    SpecialNumbers    `bson:"specialNumbers" json:"specialNumbers"`
	Settings          Settings          `bson:"settings" json:"settings"`
	CurrentTime       time.Time         `bson:"currentTime" json:"currentTime"`
}

// PublicState is the reduced projection for remote players. It deliberately
// omits the roster, pool and assignment set so clients cannot enumerate
// other players or unsold cards.
type PublicState struct {
	GamePhase        GamePhase      `json:"gamePhase"`
	CalledNumbers    []int          `json:"calledNumbers"`
	LastDrawnNumbers []int          `json:"lastDrawnNumbers"`
	Winners          []Winner       `json:"winners"`
	Prizes           []Prize        `json:"prizes"`
	CallerMessage    string         `json:"callerMessage"`
	SpecialNumbers   SpecialNumbers `json:"specialNumbers"`
	Settings         Settings       `json:"settings"`
}

// GamePhase represents the lifecycle phase of the game
type GamePhase string

const (
	PhaseSetup    GamePhase = "SETUP"
	PhasePlaying  GamePhase = "PLAYING"
	PhaseGameOver GamePhase = "GAME_OVER"
)

// PlayerStatus represents the reservation status of a player
type PlayerStatus string

const (
	PlayerStatusPending   PlayerStatus = "PENDING"
	PlayerStatusConfirmed PlayerStatus = "CONFIRMED"
)

// Dauber is the visual marker a player uses on matched cells
type Dauber string

const (
	DauberStar    Dauber = "star"
	DauberFlame   Dauber = "flame"
	DauberDiamond Dauber = "diamond"
	DauberClover  Dauber = "clover"
)

// Valid reports whether d is one of the four marker choices.
func (d Dauber) Valid() bool {
	switch d {
	case DauberStar, DauberFlame, DauberDiamond, DauberClover:
		return true
	}
	return false
}

// DefaultPrizes returns the three prize tiers in ascending-id SETUP order.
// Prize id 3 carries the easiest pattern and is played first once the list
// is re-sorted descending at game start.
func DefaultPrizes() []Prize {
	return []Prize{
		{ID: 1, Name: "Primer Premio", Amount: "0.00", Pattern: bingo.PatternFullCard},
		{ID: 2, Name: "Segundo Premio", Amount: "0.00", Pattern: bingo.PatternAnyLine},
		{ID: 3, Name: "Tercer Premio", Amount: "0.00", Pattern: bingo.PatternFourCorners},
	}
}

// DefaultSettings returns the out-of-the-box branding values.
func DefaultSettings() Settings {
	return Settings{
		BingoName:        "Bingo Loco",
		LogoURL:          "",
		DeveloperName:    "Un Genio Anónimo",
		AdminPhoneNumber: "59100000000",
	}
}

// DefaultDistribution returns the default revenue split.
func DefaultDistribution() PrizeDistribution {
	return PrizeDistribution{First: 50, Second: 20, Third: 10, House: 20}
}
