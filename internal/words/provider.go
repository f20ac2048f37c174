package words

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/twentyq/game-server-go/internal/config"
)

// fallbackWords is the embedded pool used whenever the word list is
// unreachable or malformed. A word source fault never surfaces to the
// caller as an error.
var fallbackWords = []string{"chicken", "computer", "elephant", "book", "piano"}

// wordList is the object-store document shape.
type wordList struct {
	DailyWords   map[string]string `json:"daily_words"`
	DefaultWords []string          `json:"default_words"`
}

// Provider resolves the secret word for a calendar date from a daily
// schedule, falling back to a random pool choice.
type Provider struct {
	wordsURL   string
	httpClient *http.Client
	now        func() time.Time
}

func NewProvider(wordsURL string) *Provider {
	return &Provider{
		wordsURL:   wordsURL,
		httpClient: &http.Client{Timeout: config.WordFetchTimeout},
		now:        time.Now,
	}
}

// WordOfDay returns today's scheduled word, or a random pool word when
// no word is scheduled. Always returns a non-empty word.
func (p *Provider) WordOfDay(ctx context.Context) string {
	list, err := p.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("word list unavailable, using fallback pool")
		return randomWord(fallbackWords)
	}

	today := p.now().Format(time.DateOnly)
	if word, ok := list.DailyWords[today]; ok {
		return word
	}
	if len(list.DefaultWords) > 0 {
		return randomWord(list.DefaultWords)
	}
	return randomWord(fallbackWords)
}

// WordOfYesterday returns yesterday's scheduled word, or "" when none
// was scheduled. "" is the normal no-word value, not an error.
func (p *Provider) WordOfYesterday(ctx context.Context) string {
	list, err := p.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("word list unavailable, no word for yesterday")
		return ""
	}

	yesterday := p.now().AddDate(0, 0, -1).Format(time.DateOnly)
	return list.DailyWords[yesterday]
}

func (p *Provider) fetch(ctx context.Context) (*wordList, error) {
	if p.wordsURL == "" {
		return nil, fmt.Errorf("word list url not configured")
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.WordFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.wordsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build word list request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch word list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch word list: status %d", resp.StatusCode)
	}

	var list wordList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parse word list: %w", err)
	}
	return &list, nil
}

func randomWord(pool []string) string {
	return pool[rand.Intn(len(pool))]
}
