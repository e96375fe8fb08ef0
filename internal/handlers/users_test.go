package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/alfagnish/usuarios/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []feed.Event
}

func (p *recordingPublisher) Publish(e feed.Event) { p.events = append(p.events, e) }

func newUsersRouter(t *testing.T) (http.Handler, *users.Store, *recordingPublisher) {
	t.Helper()

	store := users.NewStore()
	store.Seed(users.DefaultSeed...)
	pub := &recordingPublisher{}

	r := chi.NewRouter()
	r.Route("/api/usuarios", NewUsersHandler(store, pub).Routes)
	return r, store, pub
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) users.User {
	t.Helper()
	var u users.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u), rec.Body.String())
	return u
}

func TestUsers_List(t *testing.T) {
	h, _, _ := newUsersRouter(t)

	rec := do(h, http.MethodGet, "/api/usuarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`[{"id":1,"name":"Juan"},{"id":2,"name":"Ana"},{"id":3,"name":"Marty"},{"id":4,"name":"Luis"}]`,
		rec.Body.String())
}

func TestUsers_Get(t *testing.T) {
	h, _, _ := newUsersRouter(t)

	rec := do(h, http.MethodGet, "/api/usuarios/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.User{ID: 2, Name: "Ana"}, decodeUser(t, rec))

	for _, id := range []string{"99", "abc", "2x"} {
		rec = do(h, http.MethodGet, "/api/usuarios/"+id, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "user not found", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	}
}

func TestUsers_CreateValidation(t *testing.T) {
	bodies := map[string]string{
		"too short":   `{"name":"Al"}`,
		"absent":      `{"email":"al@example.com"}`,
		"not string":  `{"name":123}`,
		"null":        `{"name":null}`,
		"empty body":  ``,
		"broken json": `{"name":`,
		"blank":       `{"name":"    "}`,
	}

	for label, body := range bodies {
		t.Run(label, func(t *testing.T) {
			h, store, pub := newUsersRouter(t)

			rec := do(h, http.MethodPost, "/api/usuarios", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, rec.Body.String())
			assert.Equal(t, 4, store.Len())
			assert.Empty(t, pub.events)
		})
	}
}

func TestUsers_CreateMessages(t *testing.T) {
	h, _, _ := newUsersRouter(t)

	rec := do(h, http.MethodPost, "/api/usuarios", `{"name":"Al"}`)
	assert.Equal(t, "name must be at least 3 characters", rec.Body.String())

	rec = do(h, http.MethodPost, "/api/usuarios", `{}`)
	assert.Equal(t, "name is required", rec.Body.String())

	rec = do(h, http.MethodPost, "/api/usuarios", `{"name":true}`)
	assert.Equal(t, "name must be a string", rec.Body.String())
}

func TestUsers_Create(t *testing.T) {
	h, store, pub := newUsersRouter(t)

	rec := do(h, http.MethodPost, "/api/usuarios", `{"name":"  Alice ","role":"ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.User{ID: 5, Name: "Alice"}, decodeUser(t, rec))
	assert.Equal(t, 5, store.Len())

	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.EventCreated, pub.events[0].Type)
	assert.Equal(t, 5, pub.events[0].User.ID)
}

func TestUsers_CreateAcceptsNombreAndForms(t *testing.T) {
	h, _, _ := newUsersRouter(t)

	rec := do(h, http.MethodPost, "/api/usuarios", `{"nombre":"Pedro"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pedro", decodeUser(t, rec).Name)

	// name wins over nombre when both are present.
	rec = do(h, http.MethodPost, "/api/usuarios", `{"name":"Al","nombre":"Pedro"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	form := url.Values{"name": {"Carla"}}
	req := httptest.NewRequest(http.MethodPost, "/api/usuarios", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.User{ID: 6, Name: "Carla"}, decodeUser(t, rec))
}

func TestUsers_Update(t *testing.T) {
	h, store, pub := newUsersRouter(t)

	rec := do(h, http.MethodPut, "/api/usuarios/3", `{"name":"Martha","id":42}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.User{ID: 3, Name: "Martha"}, decodeUser(t, rec))

	u, ok := store.FindByID("3")
	require.True(t, ok)
	assert.Equal(t, "Martha", u.Name)
	_, ok = store.FindByID("42")
	assert.False(t, ok)

	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.EventUpdated, pub.events[0].Type)
}

func TestUsers_UpdateChecksExistenceFirst(t *testing.T) {
	h, store, pub := newUsersRouter(t)

	rec := do(h, http.MethodPut, "/api/usuarios/99", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPut, "/api/usuarios/1", `{"name":"X"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name must be at least 3 characters", rec.Body.String())

	assert.Equal(t, users.DefaultSeed[0], store.List()[0].Name)
	assert.Empty(t, pub.events)
}

func TestUsers_Delete(t *testing.T) {
	h, store, pub := newUsersRouter(t)

	rec := do(h, http.MethodDelete, "/api/usuarios/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, users.User{ID: 1, Name: "Juan"}, decodeUser(t, rec))
	assert.Equal(t, 3, store.Len())

	for i := 0; i < 3; i++ {
		rec = do(h, http.MethodDelete, "/api/usuarios/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, 3, store.Len())

	require.Len(t, pub.events, 1)
	assert.Equal(t, feed.EventDeleted, pub.events[0].Type)
	assert.Equal(t, "Juan", pub.events[0].User.Name)
}

func TestUsers_NilPublisher(t *testing.T) {
	store := users.NewStore()
	r := chi.NewRouter()
	r.Route("/api/usuarios", NewUsersHandler(store, nil).Routes)

	rec := do(r, http.MethodPost, "/api/usuarios", `{"name":"Alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeUser(t, rec).ID)
}
