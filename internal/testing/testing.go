// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/biotune/internal/models"
)

// MemoryLinkStore is an in-memory [models.LinkStore] that records every call.
//
// The error fields must be set before the store is shared between goroutines.
type MemoryLinkStore struct {
	UpsertErr  error
	DeleteErr  error
	LoadAllErr error

	mu      sync.Mutex
	links   map[int64]models.Link
	nextID  int64
	loads   []time.Time
	upserts []models.Link
	deletes []int64
}

// NewMemoryLinkStore creates a store seeded with links. Links without an ID are assigned one.
func NewMemoryLinkStore(links ...models.Link) *MemoryLinkStore {
	s := &MemoryLinkStore{links: make(map[int64]models.Link)}
	for _, l := range links {
		l = l.Clone()
		if l.ID == nil {
			s.nextID++
			id := s.nextID
			l.ID = &id
		} else if *l.ID > s.nextID {
			s.nextID = *l.ID
		}
		s.links[*l.ID] = l
	}
	return s
}

func (s *MemoryLinkStore) Upsert(ctx context.Context, link *models.Link) (*models.Link, error) {
	if err := link.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpsertErr != nil {
		return nil, s.UpsertErr
	}

	stored := link.Clone()
	if stored.ID == nil {
		s.nextID++
		id := s.nextID
		stored.ID = &id
	}
	s.links[*stored.ID] = stored
	s.upserts = append(s.upserts, stored.Clone())

	out := stored.Clone()
	return &out, nil
}

func (s *MemoryLinkStore) Delete(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if link == nil || link.ID == nil {
		return nil
	}

	delete(s.links, *link.ID)
	s.deletes = append(s.deletes, *link.ID)
	return nil
}

func (s *MemoryLinkStore) LoadAll(ctx context.Context) ([]*models.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loads = append(s.loads, time.Now())
	if s.LoadAllErr != nil {
		return nil, s.LoadAllErr
	}

	links := make([]*models.Link, 0, len(s.links))
	for _, l := range s.links {
		c := l.Clone()
		links = append(links, &c)
	}
	sort.Slice(links, func(i, j int) bool { return *links[i].ID < *links[j].ID })
	return links, nil
}

// Get returns a copy of the stored link with id.
func (s *MemoryLinkStore) Get(id int64) (models.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[id]
	return l.Clone(), ok
}

// Len returns the number of stored links.
func (s *MemoryLinkStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.links)
}

// Loads returns how many times LoadAll was called.
func (s *MemoryLinkStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

// LoadTimes returns when each LoadAll call happened.
func (s *MemoryLinkStore) LoadTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.loads...)
}

// Upserts returns copies of every successfully upserted link in call order.
func (s *MemoryLinkStore) Upserts() []models.Link {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Link(nil), s.upserts...)
}

// Deletes returns the identities passed to successful Delete calls.
func (s *MemoryLinkStore) Deletes() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.deletes...)
}

// FakeSpotify is a test double for services.SpotifyService.
//
// A nil func field falls back to a deterministic default.
type FakeSpotify struct {
	ExchangeFunc   func(ctx context.Context, code string) (*models.TokenPair, error)
	RefreshFunc    func(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	NowPlayingFunc func(ctx context.Context, accessToken string) (*models.NowPlaying, error)

	mu              sync.Mutex
	refreshCalls    []string
	nowPlayingCalls []string
}

func (f *FakeSpotify) BuildAuthorizationURL(state string) (string, error) {
	return "https://accounts.example.test/en/authorize?state=" + url.QueryEscape(state), nil
}

func (f *FakeSpotify) ExchangeCode(ctx context.Context, code string) (*models.TokenPair, error) {
	if f.ExchangeFunc != nil {
		return f.ExchangeFunc(ctx, code)
	}
	return &models.TokenPair{AccessToken: "access-" + code, RefreshToken: "refresh-" + code}, nil
}

func (f *FakeSpotify) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	f.mu.Lock()
	f.refreshCalls = append(f.refreshCalls, refreshToken)
	f.mu.Unlock()

	if f.RefreshFunc != nil {
		return f.RefreshFunc(ctx, refreshToken)
	}
	return &models.TokenPair{AccessToken: "access-" + refreshToken}, nil
}

func (f *FakeSpotify) NowPlaying(ctx context.Context, accessToken string) (*models.NowPlaying, error) {
	f.mu.Lock()
	f.nowPlayingCalls = append(f.nowPlayingCalls, accessToken)
	f.mu.Unlock()

	if f.NowPlayingFunc != nil {
		return f.NowPlayingFunc(ctx, accessToken)
	}
	return nil, nil
}

// RefreshCalls returns the refresh tokens passed to Refresh.
func (f *FakeSpotify) RefreshCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refreshCalls...)
}

// NowPlayingCalls returns the access tokens passed to NowPlaying.
func (f *FakeSpotify) NowPlayingCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.nowPlayingCalls...)
}

// BioUpdate is one recorded call to [FakeGithub.UpdateBio].
type BioUpdate struct {
	Username    string
	AccessToken string
	Bio         string
}

// FakeGithub is a test double for services.BioService.
type FakeGithub struct {
	UpdateFunc func(ctx context.Context, username, accessToken, bio string) error

	mu      sync.Mutex
	updates []BioUpdate
}

func (f *FakeGithub) UpdateBio(ctx context.Context, username, accessToken, bio string) error {
	f.mu.Lock()
	f.updates = append(f.updates, BioUpdate{Username: username, AccessToken: accessToken, Bio: bio})
	f.mu.Unlock()

	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, username, accessToken, bio)
	}
	return nil
}

// Updates returns every recorded bio update in call order.
func (f *FakeGithub) Updates() []BioUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BioUpdate(nil), f.updates...)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
