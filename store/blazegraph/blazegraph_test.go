package blazegraph

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type call struct {
	path string
	body string
}

// server fakes a Blazegraph endpoint. Namespaces start out missing and come
// into existence through the provisioning endpoint.
type server struct {
	mu         sync.Mutex
	namespaces map[string]bool
	calls      []call
	queryBody  string
}

func newServer() *server {
	return &server{namespaces: make(map[string]bool), queryBody: `{"boolean": true}`}
}

func (s *server) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.calls = append(s.calls, call{path: r.URL.Path, body: string(body)})
		s.mu.Unlock()

		if r.URL.Path == "/bigdata/namespace" {
			s.mu.Lock()
			s.namespaces["testrepo"] = true
			s.mu.Unlock()
			w.WriteHeader(http.StatusCreated)
			return
		}

		s.mu.Lock()
		exists := s.namespaces["testrepo"]
		s.mu.Unlock()
		if !exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, s.queryBody)
	})
}

func TestQueryProvisionsMissingNamespace(t *testing.T) {
	srv := newServer()
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	c := New(ts.URL+"/bigdata", WithFixtures(
		Fixture{Name: "ontology", ContentType: "text/turtle", Data: []byte("# ontology")},
		Fixture{Name: "assertions", ContentType: "text/turtle", Data: []byte("# assertions")},
	))
	repo := c.Open("testrepo")

	out, err := repo.Query(context.Background(), "ASK { ?s ?p ?o }", "application/sparql-results+json")
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != srv.queryBody {
		t.Fatalf("got body %q", out)
	}

	// failed query, provision, two fixtures, retried query
	wantPaths := []string{
		"/bigdata/namespace/testrepo/sparql",
		"/bigdata/namespace",
		"/bigdata/namespace/testrepo/sparql",
		"/bigdata/namespace/testrepo/sparql",
		"/bigdata/namespace/testrepo/sparql",
	}
	if len(srv.calls) != len(wantPaths) {
		t.Fatalf("expected %d calls, got %d: %+v", len(wantPaths), len(srv.calls), srv.calls)
	}
	for i, want := range wantPaths {
		if srv.calls[i].path != want {
			t.Fatalf("call %d: path %q, want %q", i, srv.calls[i].path, want)
		}
	}
	if srv.calls[2].body != "# ontology" || srv.calls[3].body != "# assertions" {
		t.Fatalf("fixtures loaded out of order: %+v", srv.calls[2:4])
	}
}

func TestQueryEncodesForm(t *testing.T) {
	srv := newServer()
	srv.namespaces["testrepo"] = true
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	repo := New(ts.URL + "/bigdata").Open("testrepo")
	query := "SELECT ?s WHERE { ?s ?p ?o }"
	if _, err := repo.Query(context.Background(), query, "application/sparql-results+json"); err != nil {
		t.Fatal(err)
	}

	vals, err := url.ParseQuery(srv.calls[0].body)
	if err != nil {
		t.Fatal(err)
	}
	if got := vals.Get("query"); got != query {
		t.Fatalf("query form value %q, want %q", got, query)
	}
}

func TestUpdateErrorOnServerFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	repo := New(ts.URL + "/bigdata").Open("testrepo")
	if err := repo.Update(context.Background(), "DELETE WHERE { ?s ?p ?o }"); err == nil {
		t.Fatal("expected error")
	}
}
