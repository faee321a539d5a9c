package httpbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-intake/pkg/draft"
)

type fakeAPI struct {
	mu      sync.Mutex
	records map[draft.Identity]draft.Record
	calls   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{records: make(map[draft.Identity]draft.Record)}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	if r.Header.Get("X-Workstation") != "desk-1" {
		http.Error(w, "missing workstation", http.StatusBadRequest)
		return
	}

	id := draft.Identity(strings.TrimPrefix(r.URL.Path, "/api/v1/drafts/"))
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/drafts":
		var rec draft.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id = "draft-1"
		f.records[id] = rec
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(draft.Envelope{ID: id, Record: rec})
	case r.Method == http.MethodPut:
		var rec draft.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, ok := f.records[id]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		f.records[id] = rec
		json.NewEncoder(w).Encode(draft.Envelope{ID: id, Record: rec})
	case r.Method == http.MethodGet:
		rec, ok := f.records[id]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(draft.Envelope{ID: id, Record: rec})
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func TestClient_CreateUpdateGet(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client, err := New(srv.URL+"/api/v1/", WithHeader("X-Workstation", "desk-1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	id, err := client.Create(ctx, draft.Record{LegalBusinessName: "Acme LLC"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "draft-1" {
		t.Fatalf("unexpected id %q", id)
	}
	if err := client.Update(ctx, id, draft.Record{LegalBusinessName: "Acme LLC", DBA: "Acme"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec, err := client.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.DBA != "Acme" {
		t.Fatalf("unexpected record %+v", rec)
	}

	want := []string{"POST /api/v1/drafts", "PUT /api/v1/drafts/draft-1", "GET /api/v1/drafts/draft-1"}
	if strings.Join(api.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", api.calls, want)
	}
}

func TestClient_GetNotFound(t *testing.T) {
	srv := httptest.NewServer(newFakeAPI())
	defer srv.Close()

	client, err := New(srv.URL+"/api/v1", WithHeader("X-Workstation", "desk-1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Get(context.Background(), "missing")
	if !errors.Is(err, draft.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = client.Update(context.Background(), "draft-1", draft.Record{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 status error, got %v", err)
	}
	if statusErr.Body != "boom" {
		t.Fatalf("unexpected body %q", statusErr.Body)
	}
}

func TestClient_ManagerSurfacesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mgr := draft.NewManager(client, draft.NewMemoryStore(""))
	_, err = mgr.Commit(context.Background(), nil, false)
	if !errors.Is(err, draft.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := New("/api/v1"); err == nil {
		t.Fatalf("expected error for relative url")
	}
}
