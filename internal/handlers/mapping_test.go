package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/audit"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMock = errors.New("mock error")

// eventRecorder collects published change events.
type eventRecorder struct {
	mu     sync.Mutex
	events []audit.MappingChanged
}

func (r *eventRecorder) publish() messaging.Publish[audit.MappingChanged] {
	return func(_ context.Context, event *audit.MappingChanged) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.events = append(r.events, *event)

		return nil
	}
}

func errorPublish(err error) messaging.Publish[audit.MappingChanged] {
	return func(context.Context, *audit.MappingChanged) error { return err }
}

// failingService returns err from every operation.
type failingService struct {
	err error
}

func (f failingService) Get(context.Context, string) (*shortener.Mapping, error) { return nil, f.err }
func (f failingService) GetAll(context.Context) ([]shortener.Mapping, error)     { return nil, f.err }
func (f failingService) Create(context.Context, string) (*shortener.Mapping, error) {
	return nil, f.err
}
func (f failingService) Update(context.Context, string, string) (*shortener.Mapping, error) {
	return nil, f.err
}
func (f failingService) Remove(context.Context, string) error    { return f.err }
func (f failingService) RemoveAll(context.Context) (int, error) { return 0, f.err }

func newService(t *testing.T) *shortener.Service {
	t.Helper()

	gen, err := shortener.NewUUIDGenerator(5)
	require.NoError(t, err)

	return shortener.NewService(store.NewMemoryStore(), gen, zap.NewNop())
}

func newTestHandler(t *testing.T) (*handlers.MappingHandler, *eventRecorder) {
	t.Helper()

	rec := &eventRecorder{}

	return handlers.NewMappingHandler(newService(t), rec.publish(), zap.NewNop()), rec
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()

	var se huma.StatusError

	require.ErrorAs(t, err, &se)
	assert.Equal(t, status, se.GetStatus())
}

func createMapping(t *testing.T, h *handlers.MappingHandler, longURL string) handlers.MappingBody {
	t.Helper()

	resp, err := h.CreateMapping(context.Background(), &handlers.CreateMappingRequest{RawBody: []byte(longURL)})
	require.NoError(t, err)

	return resp.Body
}

func TestCreateMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("creates mapping with location header", func(t *testing.T) {
		h, rec := newTestHandler(t)
		ctx := handlers.ContextWithRequestMeta(ctx, handlers.RequestMeta{
			RequestID: "req-1",
			ClientIP:  "10.0.0.1",
			UserAgent: "test",
		})

		resp, err := h.CreateMapping(ctx, &handlers.CreateMappingRequest{RawBody: []byte("ua.fm")})

		require.NoError(t, err)
		assert.Len(t, resp.Body.ShortURL, 5)
		assert.Equal(t, "http://ua.fm", resp.Body.LongURL)
		assert.Equal(t, "/"+resp.Body.ShortURL, resp.Location)

		require.Len(t, rec.events, 1)
		assert.Equal(t, audit.ActionCreated, rec.events[0].Action)
		assert.Equal(t, resp.Body.ShortURL, rec.events[0].Token)
		assert.Equal(t, "10.0.0.1", rec.events[0].ClientIP)
		assert.Equal(t, "test", rec.events[0].UserAgent)
		assert.Equal(t, "req-1", rec.events[0].RequestID)
		assert.False(t, rec.events[0].OccurredAt.IsZero())
	})

	t.Run("keeps https scheme", func(t *testing.T) {
		h, _ := newTestHandler(t)

		body := createMapping(t, h, "https://ua.fm")

		assert.Equal(t, "https://ua.fm", body.LongURL)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		h, rec := newTestHandler(t)

		for _, raw := range [][]byte{nil, []byte(""), []byte("  \n")} {
			resp, err := h.CreateMapping(ctx, &handlers.CreateMappingRequest{RawBody: raw})

			assert.Nil(t, resp)
			assertStatus(t, err, http.StatusBadRequest)
		}

		assert.Empty(t, rec.events)
	})

	t.Run("returns 500 when the store rejects the write", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: shortener.ErrTokenTaken}, errorPublish(nil), zap.NewNop())

		resp, err := h.CreateMapping(ctx, &handlers.CreateMappingRequest{RawBody: []byte("ua.fm")})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusInternalServerError)
	})

	t.Run("succeeds even when publishing fails", func(t *testing.T) {
		h := handlers.NewMappingHandler(newService(t), errorPublish(errMock), zap.NewNop())

		resp, err := h.CreateMapping(ctx, &handlers.CreateMappingRequest{RawBody: []byte("ua.fm")})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.Body.ShortURL)
	})
}

func TestGetMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored mapping", func(t *testing.T) {
		h, _ := newTestHandler(t)
		created := createMapping(t, h, "ua.fm")

		resp, err := h.GetMapping(ctx, &handlers.TokenRequest{ShortToken: created.ShortURL})

		require.NoError(t, err)
		assert.Equal(t, created, resp.Body)
	})

	t.Run("returns 404 for unknown token", func(t *testing.T) {
		h, _ := newTestHandler(t)

		resp, err := h.GetMapping(ctx, &handlers.TokenRequest{ShortToken: "nope1"})

		assert.Nil(t, resp)
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("returns 500 on store fault", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: errMock}, errorPublish(nil), zap.NewNop())

		_, err := h.GetMapping(ctx, &handlers.TokenRequest{ShortToken: "abcde"})

		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestListMappings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty array when nothing is stored", func(t *testing.T) {
		h, _ := newTestHandler(t)

		resp, err := h.ListMappings(ctx, nil)

		require.NoError(t, err)
		assert.NotNil(t, resp.Body)
		assert.Empty(t, resp.Body)
	})

	t.Run("returns every mapping", func(t *testing.T) {
		h, _ := newTestHandler(t)
		a := createMapping(t, h, "a.com")
		b := createMapping(t, h, "b.com")

		resp, err := h.ListMappings(ctx, nil)

		require.NoError(t, err)
		assert.ElementsMatch(t, []handlers.MappingBody{a, b}, resp.Body)
	})

	t.Run("returns 500 on store fault", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: errMock}, errorPublish(nil), zap.NewNop())

		_, err := h.ListMappings(ctx, nil)

		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestUpdateMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("updates long url", func(t *testing.T) {
		h, rec := newTestHandler(t)
		created := createMapping(t, h, "old.com")

		resp, err := h.UpdateMapping(ctx, &handlers.UpdateMappingRequest{
			ShortToken: created.ShortURL,
			RawBody:    []byte("https://new.com"),
		})

		require.NoError(t, err)
		assert.Equal(t, handlers.MappingBody{ShortURL: created.ShortURL, LongURL: "https://new.com"}, resp.Body)

		require.Len(t, rec.events, 2)
		assert.Equal(t, audit.ActionUpdated, rec.events[1].Action)
	})

	t.Run("returns 404 for unknown token", func(t *testing.T) {
		h, rec := newTestHandler(t)

		_, err := h.UpdateMapping(ctx, &handlers.UpdateMappingRequest{ShortToken: "nope1", RawBody: []byte("x.com")})

		assertStatus(t, err, http.StatusNotFound)
		assert.Empty(t, rec.events)
	})

	t.Run("returns 400 for empty body", func(t *testing.T) {
		h, _ := newTestHandler(t)
		created := createMapping(t, h, "old.com")

		_, err := h.UpdateMapping(ctx, &handlers.UpdateMappingRequest{ShortToken: created.ShortURL})

		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("returns 500 on store fault", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: errMock}, errorPublish(nil), zap.NewNop())

		_, err := h.UpdateMapping(ctx, &handlers.UpdateMappingRequest{ShortToken: "abcde", RawBody: []byte("x.com")})

		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestDeleteMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes mapping once", func(t *testing.T) {
		h, rec := newTestHandler(t)
		created := createMapping(t, h, "ua.fm")
		req := &handlers.TokenRequest{ShortToken: created.ShortURL}

		resp, err := h.DeleteMapping(ctx, req)
		require.NoError(t, err)
		assert.Nil(t, resp)

		_, err = h.DeleteMapping(ctx, req)
		assertStatus(t, err, http.StatusNotFound)

		_, err = h.GetMapping(ctx, req)
		assertStatus(t, err, http.StatusNotFound)

		require.Len(t, rec.events, 2)
		assert.Equal(t, audit.ActionRemoved, rec.events[1].Action)
	})

	t.Run("returns 500 on store fault", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: errMock}, errorPublish(nil), zap.NewNop())

		_, err := h.DeleteMapping(ctx, &handlers.TokenRequest{ShortToken: "abcde"})

		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestDeleteAllMappings(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store answers 500", func(t *testing.T) {
		h, rec := newTestHandler(t)

		_, err := h.DeleteAllMappings(ctx, nil)

		assertStatus(t, err, http.StatusInternalServerError)
		assert.Empty(t, rec.events)
	})

	t.Run("removes everything", func(t *testing.T) {
		h, rec := newTestHandler(t)
		createMapping(t, h, "a.com")
		createMapping(t, h, "b.com")

		_, err := h.DeleteAllMappings(ctx, nil)
		require.NoError(t, err)

		list, err := h.ListMappings(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, list.Body)

		last := rec.events[len(rec.events)-1]
		assert.Equal(t, audit.ActionRemovedAll, last.Action)
		assert.Equal(t, 2, last.Count)
	})

	t.Run("returns 500 on store fault", func(t *testing.T) {
		h := handlers.NewMappingHandler(failingService{err: errMock}, errorPublish(nil), zap.NewNop())

		_, err := h.DeleteAllMappings(ctx, nil)

		assertStatus(t, err, http.StatusInternalServerError)
	})
}
