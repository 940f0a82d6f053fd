package discovery_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"reelist/internal/discovery"
	"reelist/internal/services"
	"reelist/internal/testsupport"
	"reelist/internal/tmdb"
	"reelist/internal/userdata"
)

type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Hour)
	return c.now
}

type fixture struct {
	server  *testsupport.CatalogServer
	store   *userdata.Store
	backend *userdata.MemoryBackend
	svc     *discovery.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	server := testsupport.NewCatalogServer(t)
	client, err := tmdb.New(testsupport.TestAPIKey, server.URL, "en-US")
	if err != nil {
		t.Fatalf("tmdb.New: %v", err)
	}
	backend := userdata.NewMemoryBackend()
	clock := &tickClock{now: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)}
	store, err := userdata.Open(context.Background(), backend, userdata.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("userdata.Open: %v", err)
	}
	return &fixture{
		server:  server,
		store:   store,
		backend: backend,
		svc:     discovery.New(client, store, nil),
	}
}

func TestHomeBlankQueryShowsPopular(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Home(context.Background(), "   ", 0)
	if err != nil {
		t.Fatalf("Home returned error: %v", err)
	}
	if page.View != discovery.ViewPopular || page.Empty() {
		t.Fatalf("expected popular listing, got %+v", page)
	}
	if f.server.Hits("/search/movie") != 0 {
		t.Fatal("blank query must not search")
	}
}

func TestHomeSearchTrimsQuery(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Home(context.Background(), "  inception ", 1)
	if err != nil {
		t.Fatalf("Home returned error: %v", err)
	}
	if page.View != discovery.ViewSearch || page.Query != "inception" {
		t.Fatalf("unexpected page %+v", page)
	}
	if got := f.server.LastQuery("/search/movie").Get("query"); got != "inception" {
		t.Fatalf("expected trimmed query, got %q", got)
	}
	if len(page.Results.Results) != 1 || page.Results.Results[0].ID != 27205 {
		t.Fatalf("unexpected results %+v", page.Results.Results)
	}
}

func TestHomeSearchNoResults(t *testing.T) {
	f := newFixture(t)
	page, err := f.svc.Home(context.Background(), "zzzz", 1)
	if err != nil {
		t.Fatalf("Home returned error: %v", err)
	}
	if !page.Empty() {
		t.Fatal("expected empty page")
	}
}

func TestHomeFailureMessage(t *testing.T) {
	f := newFixture(t)
	f.server.FailPath("/movie/popular", http.StatusBadGateway)
	_, err := f.svc.Home(context.Background(), "", 1)
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if msg := discovery.UserMessage(err); msg != discovery.MessagePopularFailed {
		t.Fatalf("unexpected message %q", msg)
	}

	f.server.FailPath("/search/movie", http.StatusBadGateway)
	_, err = f.svc.Home(context.Background(), "matrix", 1)
	if msg := discovery.UserMessage(err); msg != discovery.MessageSearchFailed {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestDetailAnnotatesUserState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.AddToWatchlist(ctx, 603); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	if err := f.store.RateMovie(ctx, 603, 4); err != nil {
		t.Fatalf("RateMovie: %v", err)
	}

	view, err := f.svc.Detail(ctx, 603)
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if !view.InWatchlist || !view.Rated || view.UserRating != 4 {
		t.Fatalf("unexpected user state %+v", view)
	}
	if view.Runtime != "2h 16m" {
		t.Fatalf("unexpected runtime %q", view.Runtime)
	}
	if len(view.Videos) != discovery.DetailVideoLimit {
		t.Fatalf("expected videos trimmed to %d, got %d", discovery.DetailVideoLimit, len(view.Videos))
	}
	if len(view.Directors) != 1 || view.Directors[0] != "Lana Wachowski" {
		t.Fatalf("unexpected directors %v", view.Directors)
	}
	if len(view.Cast) != 3 {
		t.Fatalf("unexpected cast %+v", view.Cast)
	}
	for _, similar := range view.Similar {
		if similar.ID == 603 {
			t.Fatal("similar titles must not include the movie itself")
		}
	}
	if view.PosterURL != "https://image.tmdb.org/t/p/w500/603.jpg" {
		t.Fatalf("unexpected poster url %q", view.PosterURL)
	}
	if view.BackdropURL != "" {
		t.Fatalf("expected no backdrop url, got %q", view.BackdropURL)
	}
}

func TestDetailFailureMessage(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Detail(context.Background(), 424242)
	if msg := discovery.UserMessage(err); msg != discovery.MessageDetailsFailed {
		t.Fatalf("unexpected message %q for %v", msg, err)
	}
}

func TestToggleWatchlist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	added, err := f.svc.ToggleWatchlist(ctx, 604)
	if err != nil || !added {
		t.Fatalf("toggle = %v, %v", added, err)
	}
	added, err = f.svc.ToggleWatchlist(ctx, 604)
	if err != nil || added {
		t.Fatalf("toggle = %v, %v", added, err)
	}

	f.backend.FailSaves(errors.New("read-only filesystem"))
	_, err = f.svc.ToggleWatchlist(ctx, 604)
	if msg := discovery.UserMessage(err); msg != discovery.MessageSaveFailed {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestWatchlistNewestFirstWithRatings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{603, 27205, 157336} {
		if err := f.store.AddToWatchlist(ctx, id); err != nil {
			t.Fatalf("AddToWatchlist(%d): %v", id, err)
		}
	}
	if err := f.store.RateMovie(ctx, 27205, 5); err != nil {
		t.Fatalf("RateMovie: %v", err)
	}

	view, err := f.svc.Watchlist(ctx)
	if err != nil {
		t.Fatalf("Watchlist returned error: %v", err)
	}
	if len(view.Rows) != 3 || len(view.Unavailable) != 0 {
		t.Fatalf("unexpected view %+v", view)
	}
	order := []int64{view.Rows[0].Movie.ID, view.Rows[1].Movie.ID, view.Rows[2].Movie.ID}
	if order[0] != 157336 || order[1] != 27205 || order[2] != 603 {
		t.Fatalf("expected newest first, got %v", order)
	}
	if !view.Rows[1].Rated || view.Rows[1].Rating != 5 {
		t.Fatalf("expected rating on row, got %+v", view.Rows[1])
	}
	if view.Rows[0].Rated {
		t.Fatal("unrated movie should not be marked rated")
	}
}

func TestWatchlistSkipsUnavailableMovies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, id := range []int64{603, 999, 604} {
		if err := f.store.AddToWatchlist(ctx, id); err != nil {
			t.Fatalf("AddToWatchlist(%d): %v", id, err)
		}
	}

	view, err := f.svc.Watchlist(ctx)
	if err != nil {
		t.Fatalf("Watchlist returned error: %v", err)
	}
	if len(view.Rows) != 2 {
		t.Fatalf("expected two resolved rows, got %d", len(view.Rows))
	}
	if len(view.Unavailable) != 1 || view.Unavailable[0] != 999 {
		t.Fatalf("expected 999 unavailable, got %v", view.Unavailable)
	}
	if !f.store.IsInWatchlist(999) {
		t.Fatal("unavailable movies must stay on the watchlist")
	}
}

func TestWatchlistEmpty(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.Watchlist(context.Background())
	if err != nil {
		t.Fatalf("Watchlist returned error: %v", err)
	}
	if len(view.Rows) != 0 || f.server.TotalHits() != 0 {
		t.Fatal("empty watchlist must not touch the catalog")
	}
}

func TestWatchlistUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.AddToWatchlist(ctx, 603); err != nil {
		t.Fatalf("AddToWatchlist: %v", err)
	}
	if _, err := f.svc.Detail(ctx, 603); err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if _, err := f.svc.Watchlist(ctx); err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if hits := f.server.Hits("/movie/603"); hits != 1 {
		t.Fatalf("expected cached details to be reused, got %d requests", hits)
	}
}

func TestUserMessage(t *testing.T) {
	if discovery.UserMessage(nil) != "" {
		t.Fatal("expected empty message for nil")
	}
	validation := services.Wrap(services.ErrValidation, "userdata", "rate movie", "rating 9 out of range 1-5", nil)
	if got := discovery.UserMessage(validation); got != validation.Error() {
		t.Fatalf("expected validation detail, got %q", got)
	}
	if got := discovery.UserMessage(errors.New("boom")); got != discovery.MessageUnexpected {
		t.Fatalf("unexpected message %q", got)
	}
}
