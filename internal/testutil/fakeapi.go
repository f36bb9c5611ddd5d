package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nhle/plant-care/internal/model"
)

// FakeAPI is an in-memory plant collection server speaking the same wire
// format as the real backend.
type FakeAPI struct {
	Server *httptest.Server

	// Token, when set, must be presented as a bearer token on every request.
	Token string

	mu       sync.Mutex
	plants   map[string]model.Plant
	requests int
}

// NewFakeAPI starts a fake backend seeded with plants and stops it when the
// test completes.
func NewFakeAPI(t *testing.T, plants ...model.Plant) *FakeAPI {
	t.Helper()

	f := &FakeAPI{plants: make(map[string]model.Plant)}
	for _, p := range plants {
		f.plants[p.ID] = p
	}
	f.Server = httptest.NewServer(f.router())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server root.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Requests returns the number of requests served.
func (f *FakeAPI) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Plant returns the stored record for id.
func (f *FakeAPI) Plant(id string) (model.Plant, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.plants[id]
	return p, ok
}

// Put stores p directly, bypassing the HTTP surface.
func (f *FakeAPI) Put(p model.Plant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plants[p.ID] = p
}

func (f *FakeAPI) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(f.count, f.auth)
	r.HandleFunc("/plants", f.list).Methods("GET")
	r.HandleFunc("/plants", f.create).Methods("POST")
	r.HandleFunc("/plants/{id}", f.get).Methods("GET")
	r.HandleFunc("/plants/{id}", f.update).Methods("PUT")
	r.HandleFunc("/plants/{id}", f.remove).Methods("DELETE")
	return r
}

func (f *FakeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.Token != "" && r.Header.Get("Authorization") != "Bearer "+f.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized access"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) list(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	out := make([]model.Plant, 0, len(f.plants))
	for _, p := range f.plants {
		out = append(out, p)
	}
	f.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) get(w http.ResponseWriter, r *http.Request) {
	p, ok := f.Plant(mux.Vars(r)["id"])
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "plant not found"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (f *FakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var p model.Plant
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	p.ID = uuid.New().String()
	f.Put(p)
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": p.ID})
}

func (f *FakeAPI) update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var p model.Plant
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	p.ID = id

	f.mu.Lock()
	prev, ok := f.plants[id]
	modified := 0
	matched := 0
	if ok {
		matched = 1
		if prev != p {
			f.plants[id] = p
			modified = 1
		}
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"matchedCount": matched, "modifiedCount": modified})
}

func (f *FakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	f.mu.Lock()
	_, ok := f.plants[id]
	delete(f.plants, id)
	f.mu.Unlock()

	deleted := 0
	if ok {
		deleted = 1
	}
	writeJSON(w, http.StatusOK, map[string]int{"deletedCount": deleted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
