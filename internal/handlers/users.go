package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/alfagnish/usuarios/internal/feed"
	"github.com/alfagnish/usuarios/internal/users"
	"github.com/go-chi/chi/v5"
)

// Publisher receives an event after every successful mutation.
type Publisher interface {
	Publish(feed.Event)
}

// UsersHandler provides the CRUD endpoints over the user store.
type UsersHandler struct {
	store *users.Store
	pub   Publisher
}

// NewUsersHandler creates a new UsersHandler. pub may be nil.
func NewUsersHandler(store *users.Store, pub Publisher) *UsersHandler {
	return &UsersHandler{store: store, pub: pub}
}

// Routes registers user routes on the given chi router.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// userInput is the request body for Create and Update. "nombre" is
// accepted for older clients when "name" is absent.
type userInput struct {
	Name   users.OptionalString `json:"name"`
	Nombre users.OptionalString `json:"nombre"`
}

func (in userInput) name() users.OptionalString {
	if !in.Name.Present {
		return in.Nombre
	}
	return in.Name
}

// decodeUserInput reads a JSON or form-encoded body. A body that cannot be
// decoded yields an empty input, which the validator rejects.
func decodeUserInput(r *http.Request) userInput {
	var in userInput

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return userInput{}
		}
		if v, ok := r.PostForm["name"]; ok && len(v) > 0 {
			in.Name = users.Some(v[0])
		}
		if v, ok := r.PostForm["nombre"]; ok && len(v) > 0 {
			in.Nombre = users.Some(v[0])
		}
		return in
	}

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return userInput{}
	}
	return in
}

// List returns every user in insertion order.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.List())
}

// Get returns a single user.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.FindByID(chi.URLParam(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, users.ErrNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Create validates the body and appends a new user.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, err := users.Validate(decodeUserInput(r).name())
	if err != nil {
		h.writeErr(w, err)
		return
	}

	u := h.store.Insert(name)
	h.publish(feed.EventCreated, u)
	writeJSON(w, http.StatusOK, u)
}

// Update renames an existing user. A missing user is reported before an
// invalid body.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.FindByID(chi.URLParam(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, users.ErrNotFound.Error())
		return
	}

	name, err := users.Validate(decodeUserInput(r).name())
	if err != nil {
		h.writeErr(w, err)
		return
	}

	u, err = h.store.UpdateName(u, name)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.publish(feed.EventUpdated, u)
	writeJSON(w, http.StatusOK, u)
}

// Delete removes a user and returns it as it was before removal.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.FindByID(chi.URLParam(r, "id"))
	if !ok {
		writeText(w, http.StatusNotFound, users.ErrNotFound.Error())
		return
	}

	removed, err := h.store.Remove(u)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.publish(feed.EventDeleted, removed)
	writeJSON(w, http.StatusOK, removed)
}

// writeErr maps store and validation errors to status codes.
func (h *UsersHandler) writeErr(w http.ResponseWriter, err error) {
	var ve *users.ValidationError
	switch {
	case errors.As(err, &ve):
		writeText(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, users.ErrNotFound):
		writeText(w, http.StatusNotFound, users.ErrNotFound.Error())
	default:
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *UsersHandler) publish(t feed.EventType, u users.User) {
	if h.pub == nil {
		return
	}
	h.pub.Publish(feed.Event{Type: t, User: u})
}
