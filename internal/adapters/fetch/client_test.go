package fetch_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"propharvest/internal/adapters/fetch"
)

func TestClient_GetJSON_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 123.0})
		}
	}))
	defer ts.Close()

	cl, err := fetch.New("testsite", 100, "") // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got map[string]any
	if err := cl.GetJSON(ctx, ts.URL, nil, &got); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	id, ok := got["id"].(float64)
	if !ok || int(id) != 123 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetJSON_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl, err := fetch.New("testsite", 100, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var got map[string]any
	if err := cl.GetJSON(ctx, ts.URL, nil, &got); !errors.Is(err, fetch.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_GetPrefixedJSON_StripsGuard(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{}&&{"payload": {"ok": true}}`))
	}))
	defer ts.Close()

	cl, err := fetch.New("testsite", 100, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var got struct {
		Payload struct {
			OK bool `json:"ok"`
		} `json:"payload"`
	}
	if err := cl.GetPrefixedJSON(context.Background(), ts.URL, "{}&&", nil, &got); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !got.Payload.OK {
		t.Fatalf("guard not stripped: %+v", got)
	}
}

func TestClient_PostJSON_SendsBodyAndHeaders(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: %s", ct)
		}
		if got := r.Header.Get("X-Custom"); got != "yes" {
			t.Errorf("custom header: %s", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(200)
		_ = json.NewEncoder(w).Encode(map[string]any{"echo": body["q"]})
	}))
	defer ts.Close()

	cl, err := fetch.New("testsite", 100, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var got map[string]any
	err = cl.PostJSON(context.Background(), ts.URL, map[string]any{"q": "hello"},
		map[string]string{"X-Custom": "yes"}, &got)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["echo"] != "hello" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_RetryAfterHeaderHonored(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(429)
			return
		}
		w.WriteHeader(200)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	cl, err := fetch.New("testsite", 100, "")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	var got map[string]any
	if err := cl.GetJSON(context.Background(), ts.URL, nil, &got); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected retry after 429, got %d hits", hits)
	}
}
