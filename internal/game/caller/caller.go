package caller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bingoloco/backend/internal/game/bingo"
)

// BombAnnouncement is the fixed phrase used when the primary draw is a bomb
// number; the external provider is never consulted for bomb draws.
const BombAnnouncement = "¡BOMBA DE NÚMEROS!"

// Provider produces a short celebratory phrase for a drawn number. It must
// return within the caller's context deadline; any failure is recovered
// locally with Fallback and never surfaces as a draw failure.
type Provider interface {
	Announce(ctx context.Context, number int) (string, error)
}

// Fallback returns the deterministic announcement used when the provider is
// unavailable, e.g. "¡Salió el B-12!".
func Fallback(number int) string {
	return fmt.Sprintf("¡Salió el %s-%d!", bingo.Letter(number), number)
}

// HTTPProvider queries an external phrase-generation endpoint. The endpoint
// receives {"number": n} and answers {"phrase": "..."}.
type HTTPProvider struct {
	url    string
	client *http.Client
	logger *zap.SugaredLogger
}

// NewHTTPProvider creates a provider for the given endpoint URL.
func NewHTTPProvider(url string, timeout time.Duration, logger *zap.SugaredLogger) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type phraseRequest struct {
	Number int `json:"number"`
}

type phraseResponse struct {
	Phrase string `json:"phrase"`
}

// Announce fetches a phrase for the number from the remote endpoint.
func (p *HTTPProvider) Announce(ctx context.Context, number int) (string, error) {
	body, err := json.Marshal(phraseRequest{Number: number})
	if err != nil {
		return "", fmt.Errorf("failed to marshal phrase request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build phrase request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("phrase request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("phrase endpoint returned status %d", resp.StatusCode)
	}

	var parsed phraseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode phrase response: %w", err)
	}

	if parsed.Phrase == "" {
		return "", fmt.Errorf("phrase endpoint returned an empty phrase")
	}

	return parsed.Phrase, nil
}

// StaticProvider always answers with the fallback phrase. It is used when no
// external endpoint is configured.
type StaticProvider struct{}

// Announce returns the deterministic fallback phrase.
func (StaticProvider) Announce(_ context.Context, number int) (string, error) {
	return Fallback(number), nil
}
