// Package session owns the persisted fetch record and the fetch lifecycle
// that populates it.
package session

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/linkgrab/internal/errors"
	"github.com/hpungsan/linkgrab/internal/extract"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// Store is the single writer of the session record.
type Store struct {
	storage Storage
	fetcher Fetcher
	logger  *log.Logger
	busy    atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store over the given storage and fetcher.
func New(storage Storage, fetcher Fetcher, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		fetcher: fetcher,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchOutput contains the result of a successful fetch.
type FetchOutput struct {
	FetchID string   `json:"fetch_id"`
	URL     string   `json:"url"`
	Links   []string `json:"links"`
	Count   int      `json:"count"`
}

// InProgress reports whether a fetch is currently running.
func (s *Store) InProgress() bool {
	return s.busy.Load()
}

// NormalizeURL prepends https:// unless raw already has an http or https scheme.
func NormalizeURL(raw string) string {
	if schemeRe.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

// LoadState restores the persisted record into view without fetching.
// Corrupt persisted links are removed and the view falls back to idle.
func (s *Store) LoadState(ctx context.Context, view ViewSink) error {
	input, ok, err := s.storage.Get(ctx, KeyInput)
	if err != nil {
		return errors.NewInternal(err)
	}
	if ok && input != "" {
		view.SetInput(input)
	}

	raw, ok, err := s.storage.Get(ctx, KeyLinks)
	if err != nil {
		return errors.NewInternal(err)
	}
	// An empty slot counts as never written
	if !ok || raw == "" {
		view.SetIndicator(Status{State: StateIdle})
		return nil
	}

	links, err := decodeLinks(raw)
	if err != nil {
		s.logger.Warn("discarding persisted links", "err", errors.NewCorruptState(KeyLinks, err))
		if err := s.storage.Remove(ctx, KeyLinks); err != nil {
			return errors.NewInternal(err)
		}
		view.SetIndicator(Status{State: StateIdle})
		return nil
	}

	s.syncStatus(ctx, len(links))
	view.RenderLinks(links)
	view.SetIndicator(Status{State: StateSuccess, Count: len(links)})
	return nil
}

// FetchAndStore fetches rawURL, extracts its links and persists the result.
//
// Empty input fails with INVALID_REQUEST before anything is touched. A call
// made while another fetch is running fails with FETCH_IN_PROGRESS. On fetch
// failure the previously stored content and links are left in place.
func (s *Store) FetchAndStore(ctx context.Context, view ViewSink, rawURL string) (*FetchOutput, error) {
	input := strings.TrimSpace(rawURL)
	if input == "" {
		view.Alert("Enter a URL.")
		return nil, errors.NewInvalidRequest("url is required")
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, errors.NewFetchInProgress()
	}
	defer s.busy.Store(false)

	fetchID := newFetchID()
	logger := s.logger.With("fetch_id", fetchID)

	if err := s.storage.Set(ctx, KeyInput, input); err != nil {
		return nil, s.fail(view, logger, errors.NewInternal(err))
	}

	view.SetIndicator(Status{State: StateInProgress})

	target := NormalizeURL(input)
	logger.Info("fetching", "url", target)

	text, err := s.fetcher.FetchText(ctx, target)
	if err != nil {
		return nil, s.fail(view, logger, errors.NewFetchFailed(target, err))
	}

	links := extract.Links(text, target)
	encoded, err := json.Marshal(links)
	if err != nil {
		return nil, s.fail(view, logger, errors.NewInternal(err))
	}

	err = s.storage.SetMany(ctx, map[string]string{
		KeyContent: text,
		KeyLinks:   string(encoded),
		KeyStatus:  strconv.Itoa(len(links)),
	})
	if err != nil {
		return nil, s.fail(view, logger, errors.NewInternal(err))
	}

	view.RenderLinks(links)
	view.SetIndicator(Status{State: StateSuccess, Count: len(links)})
	logger.Info("fetch complete", "url", target, "count", len(links))

	return &FetchOutput{
		FetchID: fetchID,
		URL:     target,
		Links:   links,
		Count:   len(links),
	}, nil
}

// ClearAll wipes the whole persisted record and resets the view.
func (s *Store) ClearAll(ctx context.Context, view ViewSink) error {
	if err := s.storage.Clear(ctx); err != nil {
		return errors.NewInternal(err)
	}
	view.SetInput("")
	view.SetIndicator(Status{State: StateIdle})
	s.logger.Info("session cleared")
	return nil
}

// Snapshot returns the persisted record without touching any view.
func (s *Store) Snapshot(ctx context.Context) (*SessionState, error) {
	state := &SessionState{Links: []string{}}

	input, _, err := s.storage.Get(ctx, KeyInput)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	state.Input = input

	content, _, err := s.storage.Get(ctx, KeyContent)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	state.Content = content

	raw, ok, err := s.storage.Get(ctx, KeyLinks)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if ok && raw != "" {
		links, err := decodeLinks(raw)
		if err != nil {
			return nil, errors.NewCorruptState(KeyLinks, err)
		}
		state.Links = links
	}
	state.Status = len(state.Links)

	return state, nil
}

// fail moves the indicator to Error and logs the failure.
func (s *Store) fail(view ViewSink, logger *log.Logger, err *errors.LinkError) error {
	logger.Error("fetch failed", "code", err.Code, "err", err.Message)
	view.SetIndicator(Status{State: StateError, Message: err.Message})
	return err
}

// syncStatus rewrites the status slot when it has drifted from the link count.
func (s *Store) syncStatus(ctx context.Context, count int) {
	want := strconv.Itoa(count)
	got, ok, err := s.storage.Get(ctx, KeyStatus)
	if err == nil && ok && got == want {
		return
	}
	if err := s.storage.Set(ctx, KeyStatus, want); err != nil {
		s.logger.Warn("could not persist status", "err", err)
	}
}

// decodeLinks parses a persisted link list. JSON null counts as corrupt.
func decodeLinks(raw string) ([]string, error) {
	var links []string
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, err
	}
	if links == nil {
		return nil, fmt.Errorf("links is not an array")
	}
	return links, nil
}

// newFetchID generates a ULID identifying one fetch cycle.
func newFetchID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
