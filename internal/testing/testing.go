// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/desertthunder/audiobox/internal/services"
	"github.com/desertthunder/audiobox/internal/shared"
)

// MockCatalog is an in-memory [services.Catalog] that records every call.
//
// Albums are listed in insertion order. Tracks missing from Tracks fail with [shared.ErrTrackNotFound].
type MockCatalog struct {
	mu sync.Mutex

	SearchResults []services.SpotifyTrack
	Albums        []services.SpotifyAlbum
	AlbumRefs     map[string][]services.SpotifyTrackRef
	Tracks        map[string]services.SpotifyTrack

	SearchErr      error
	AlbumsErr      error
	AlbumTracksErr map[string]error
	TrackErr       map[string]error

	SearchCalls      int
	SearchLimit      int
	AlbumCalls       int
	AlbumTracksCalls []string
	TrackCalls       []string
}

// NewMockCatalog creates an empty [MockCatalog].
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		AlbumRefs:      map[string][]services.SpotifyTrackRef{},
		Tracks:         map[string]services.SpotifyTrack{},
		AlbumTracksErr: map[string]error{},
		TrackErr:       map[string]error{},
	}
}

// AddAlbum registers an album whose tracks are the given full tracks.
func (m *MockCatalog) AddAlbum(id string, tracks ...services.SpotifyTrack) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Albums = append(m.Albums, services.SpotifyAlbum{ID: id, Name: "Album " + id})
	for _, tr := range tracks {
		m.AlbumRefs[id] = append(m.AlbumRefs[id], services.SpotifyTrackRef{ID: tr.ID, Name: tr.Name})
		m.Tracks[tr.ID] = tr
	}
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]services.SpotifyTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SearchCalls++
	m.SearchLimit = limit
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	results := m.SearchResults
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockCatalog) NewReleaseAlbums(ctx context.Context, limit int) ([]services.SpotifyAlbum, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AlbumCalls++
	if m.AlbumsErr != nil {
		return nil, m.AlbumsErr
	}
	albums := m.Albums
	if limit > 0 && len(albums) > limit {
		albums = albums[:limit]
	}
	return albums, nil
}

func (m *MockCatalog) AlbumTracks(ctx context.Context, albumID string, limit int) ([]services.SpotifyTrackRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AlbumTracksCalls = append(m.AlbumTracksCalls, albumID)
	if err := m.AlbumTracksErr[albumID]; err != nil {
		return nil, err
	}
	refs := m.AlbumRefs[albumID]
	if limit > 0 && len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (m *MockCatalog) Track(ctx context.Context, trackID string) (*services.SpotifyTrack, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TrackCalls = append(m.TrackCalls, trackID)
	if err := m.TrackErr[trackID]; err != nil {
		return nil, err
	}
	tr, ok := m.Tracks[trackID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}
	return &tr, nil
}

// FetchedTracks returns a copy of the track ids requested so far.
func (m *MockCatalog) FetchedTracks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.TrackCalls...)
}

// MockResolver is a [services.PreviewResolver] backed by a map.
type MockResolver struct {
	mu       sync.Mutex
	Previews map[string]string
	Calls    []string
}

// NewMockResolver creates a [MockResolver] that knows the given previews.
func NewMockResolver(previews map[string]string) *MockResolver {
	if previews == nil {
		previews = map[string]string{}
	}
	return &MockResolver{Previews: previews}
}

func (m *MockResolver) ResolvePreview(ctx context.Context, trackID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, trackID)
	u, ok := m.Previews[trackID]
	return u, ok && u != ""
}

// CallCount returns how many lookups were made.
func (m *MockResolver) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Playable returns a raw track with a native preview.
func Playable(id string) services.SpotifyTrack {
	return services.SpotifyTrack{
		ID:         id,
		Name:       "Track " + id,
		Artists:    []services.SpotifyArtist{{Name: "Artist " + id}},
		Album:      services.SpotifyAlbum{Name: "Album", Images: []services.SpotifyImage{{URL: "https://i.scdn.co/image/" + id}}},
		DurationMS: 30000,
		PreviewURL: "https://p.scdn.co/mp3-preview/" + id,
	}
}

// Silent returns a raw track without a native preview.
func Silent(id string) services.SpotifyTrack {
	tr := Playable(id)
	tr.PreviewURL = ""
	return tr
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
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

// JSONResponse builds an [http.Response] with status and a JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
