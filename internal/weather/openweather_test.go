package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Torrentov/calories-count-bot/internal/config"
	"github.com/Torrentov/calories-count-bot/internal/domain"
	"github.com/Torrentov/calories-count-bot/internal/repository"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return repository.ErrCacheMiss
	}
	return json.Unmarshal(b, dst)
}

func (m *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = b
	return nil
}

func newTestServer(t *testing.T, geoCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		geoCalls.Add(1)
		if r.URL.Query().Get("appid") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Query().Get("q") {
		case "Moscow":
			json.NewEncoder(w).Encode([]geoResult{{Name: "Moscow", Lat: 55.75, Lon: 37.61}})
		case "Broken":
			json.NewEncoder(w).Encode([]geoResult{{Name: "Broken", Lat: 1, Lon: 2}})
		default:
			json.NewEncoder(w).Encode([]geoResult{})
		}
	})
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "metric" {
			t.Errorf("expected metric units, got %q", q.Get("units"))
		}
		if q.Get("lat") == "55.75" && q.Get("lon") == "37.61" {
			w.Write([]byte(`{"main":{"temp":21.5}}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestClient(server *httptest.Server, key string, opts ...Option) *Client {
	return NewClient(config.WeatherConfig{
		APIKey:         key,
		GeoURL:         server.URL + "/geo/1.0/direct",
		WeatherURL:     server.URL + "/data/2.5/weather",
		TimeoutSeconds: 5,
	}, opts...)
}

func TestClient_Temperature(t *testing.T) {
	var geoCalls atomic.Int32
	server := newTestServer(t, &geoCalls)
	ctx := context.Background()

	var results []string
	c := newTestClient(server, "secret", WithObserver(func(r string) { results = append(results, r) }))

	t.Run("found", func(t *testing.T) {
		temp, err := c.Temperature(ctx, "Moscow")
		if err != nil {
			t.Fatalf("Temperature failed: %v", err)
		}
		if temp != 21.5 {
			t.Errorf("expected 21.5, got %v", temp)
		}
	})

	t.Run("city not found", func(t *testing.T) {
		_, err := c.Temperature(ctx, "Atlantis")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("weather endpoint fails", func(t *testing.T) {
		_, err := c.Temperature(ctx, "Broken")
		if !errors.Is(err, domain.ErrLookupFailure) {
			t.Errorf("expected ErrLookupFailure, got %v", err)
		}
	})

	want := []string{"ok", "not_found", "error"}
	if len(results) != len(want) {
		t.Fatalf("observer results = %v, want %v", results, want)
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("observer results = %v, want %v", results, want)
			break
		}
	}
}

func TestClient_Unauthorized(t *testing.T) {
	var geoCalls atomic.Int32
	server := newTestServer(t, &geoCalls)
	c := newTestClient(server, "wrong")

	_, err := c.Temperature(context.Background(), "Moscow")
	if !errors.Is(err, domain.ErrLookupFailure) {
		t.Errorf("expected ErrLookupFailure for 401, got %v", err)
	}
}

func TestClient_Cache(t *testing.T) {
	var geoCalls atomic.Int32
	server := newTestServer(t, &geoCalls)
	cache := &memCache{}
	c := newTestClient(server, "secret", WithCache(cache, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		temp, err := c.Temperature(ctx, "Moscow")
		if err != nil {
			t.Fatalf("Temperature failed: %v", err)
		}
		if temp != 21.5 {
			t.Errorf("expected 21.5, got %v", temp)
		}
	}
	if geoCalls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", geoCalls.Load())
	}

	// ненайденные города не кешируются
	c.Temperature(ctx, "Atlantis")
	c.Temperature(ctx, "Atlantis")
	if geoCalls.Load() != 3 {
		t.Errorf("expected not-found lookups to hit upstream, got %d calls", geoCalls.Load())
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	c := newTestClient(server, "secret")
	_, err := c.Temperature(context.Background(), "Moscow")
	if !errors.Is(err, domain.ErrLookupFailure) {
		t.Errorf("expected ErrLookupFailure, got %v", err)
	}
}
