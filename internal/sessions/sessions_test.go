package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/domain/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(cache.NewMemory(t.Name()), Config{TTL: time.Minute})
}

func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := httptest.NewRecorder()
	login := &types.LoginRecord{
		Identifiers:    map[string]string{"user": "U1"},
		LeagueIDs:      []string{"L1"},
		EmailConfirmed: true,
	}
	if err := s.Save(ctx, rec, login); err != nil {
		t.Fatal(err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if c := cookies[0]; !c.HttpOnly || c.Name != "sid" {
		t.Fatalf("cookie = %+v", c)
	}

	got, err := s.Load(ctx, requestWithCookies(rec))
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.UserID() != "U1" || !got.OwnsLeague("L1") {
		t.Fatalf("loaded = %+v", got)
	}
}

func TestLoadWithoutCookie(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || got != nil {
		t.Fatalf("load = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestLoadUnknownSession(t *testing.T) {
	s := newTestStore(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "not-a-session"})

	got, err := s.Load(context.Background(), r)
	if err != nil || got != nil {
		t.Fatalf("load = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec := httptest.NewRecorder()
	if err := s.Save(ctx, rec, &types.LoginRecord{EmailConfirmed: true}); err != nil {
		t.Fatal(err)
	}
	r := requestWithCookies(rec)

	out := httptest.NewRecorder()
	if err := s.Destroy(ctx, out, r); err != nil {
		t.Fatal(err)
	}

	// record gone
	got, err := s.Load(ctx, r)
	if err != nil || got != nil {
		t.Fatalf("load after destroy = (%+v, %v)", got, err)
	}

	// cookie cleared
	cookies := out.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("cookies = %+v", cookies)
	}
}
