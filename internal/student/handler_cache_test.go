package student

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/classroomhq/school-api/internal/database"
	"github.com/classroomhq/school-api/internal/query"
)

// fakeListCache mirrors the JSON store-and-expire behavior of the Redis cache
// with injectable failures.
type fakeListCache struct {
	entries map[string][]byte

	getErr error
	setErr error

	invalidations int
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: map[string][]byte{}}
}

func cacheKey(resource, variant string) string {
	return resource + ":" + variant
}

func (c *fakeListCache) GetList(_ context.Context, resource, variant string, dest any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	data, ok := c.entries[cacheKey(resource, variant)]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *fakeListCache) SetList(_ context.Context, resource, variant string, value any) error {
	if c.setErr != nil {
		return c.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[cacheKey(resource, variant)] = data
	return nil
}

func (c *fakeListCache) Invalidate(_ context.Context, resource string) error {
	c.invalidations++
	for key := range c.entries {
		if strings.HasPrefix(key, resource+":") {
			delete(c.entries, key)
		}
	}
	return nil
}

func newCachedRouter(store Store, listCache ListCache) *chi.Mux {
	h := NewHandler(store, listCache)
	r := chi.NewRouter()
	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func defaultVariant() string {
	return query.ListParams{Page: 1, Limit: 20}.Variant()
}

func TestList_CacheMissThenHit(t *testing.T) {
	store := &stubStore{students: []*database.Student{{Name: "Ada", Email: "ada@example.com"}}}
	listCache := newFakeListCache()
	router := newCachedRouter(store, listCache)

	rec := doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.listCalls)
	require.Contains(t, listCache.entries, cacheKey("students", defaultVariant()))

	// Second identical request is served from the cache.
	rec = doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.listCalls)
	require.Contains(t, rec.Body.String(), "ada@example.com")
}

// A broken cache degrades to the database; the request still succeeds.
func TestList_CacheFailureFallsBackToStore(t *testing.T) {
	store := &stubStore{students: []*database.Student{{Name: "Ada", Email: "ada@example.com"}}}
	listCache := newFakeListCache()
	listCache.getErr = errors.New("connection refused")
	listCache.setErr = errors.New("connection refused")
	router := newCachedRouter(store, listCache)

	rec := doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.listCalls)
	require.Contains(t, rec.Body.String(), "ada@example.com")
}

func TestList_CorruptCacheEntryTreatedAsMiss(t *testing.T) {
	store := &stubStore{students: []*database.Student{{Name: "Ada", Email: "ada@example.com"}}}
	listCache := newFakeListCache()
	listCache.entries[cacheKey("students", defaultVariant())] = []byte("{not json")
	router := newCachedRouter(store, listCache)

	rec := doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, store.listCalls)

	// The bad entry was overwritten with a decodable one.
	var cached []*database.Student
	require.NoError(t, json.Unmarshal(listCache.entries[cacheKey("students", defaultVariant())], &cached))
	require.Len(t, cached, 1)
}

func TestMutationInvalidatesListCache(t *testing.T) {
	store := &stubStore{students: []*database.Student{}}
	listCache := newFakeListCache()
	router := newCachedRouter(store, listCache)

	doRequest(router, http.MethodGet, "/students", "")
	require.Len(t, listCache.entries, 1)

	rec := doRequest(router, http.MethodPost, "/students", `{"name":"Ada","email":"ada@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, listCache.invalidations)
	require.Empty(t, listCache.entries)

	// The next list goes back to the database.
	doRequest(router, http.MethodGet, "/students", "")
	require.Equal(t, 2, store.listCalls)
}

// Equivalent queries share one cache entry: key cardinality is bounded by the
// whitelists, not by what the client sends.
func TestList_EquivalentQueriesShareCacheEntry(t *testing.T) {
	store := &stubStore{students: []*database.Student{}}
	listCache := newFakeListCache()
	router := newCachedRouter(store, listCache)

	doRequest(router, http.MethodGet, "/students?page=1&limit=20", "")
	doRequest(router, http.MethodGet, "/students?limit=20&junk=anything&page=1", "")
	doRequest(router, http.MethodGet, "/students", "")

	require.Equal(t, 1, store.listCalls)
	require.Len(t, listCache.entries, 1)
}
