package twitch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamwatch/internal/config"
	"streamwatch/internal/logging"
	"streamwatch/internal/twitch"
)

const livePayload = `{"stream":{"stream_type":"live","game":"Chess","channel":{"status":"Blitz all day","display_name":"Alice","logo":"https://img.example/alice.png"}}}`

func newClient(t *testing.T, handler http.HandlerFunc) *twitch.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := config.Default().API
	cfg.BaseURL = server.URL + "/kraken"
	cfg.ClientID = "client-123"
	cfg.OAuthToken = "token-xyz"
	return twitch.NewClient(cfg, logging.NewNop())
}

func TestFetchSendsHeadersAndParsesLiveStream(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kraken/streams/alice" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Client-ID"); got != "client-123" {
			t.Errorf("expected Client-ID header, got %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "OAuth token-xyz" {
			t.Errorf("expected OAuth header, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.twitchtv.v5+json" {
			t.Errorf("expected v5 accept header, got %q", got)
		}
		_, _ = w.Write([]byte(livePayload))
	})

	status, err := client.Fetch(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if status.Channel != "alice" || status.DisplayName != "Alice" || status.Activity != "Chess" || status.Title != "Blitz all day" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.IconURL != "https://img.example/alice.png" {
		t.Fatalf("expected logo url, got %q", status.IconURL)
	}

	live, ok := client.Status(context.Background(), "alice")
	if !ok || live.Activity != "Chess" {
		t.Fatalf("expected live status, got %+v ok=%v", live, ok)
	}
}

func TestStatusTreatsFailuresAsAbsent(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		body    string
		wantErr error
	}{
		{name: "offline", code: http.StatusOK, body: `{"stream":null}`, wantErr: twitch.ErrOffline},
		{name: "rerun", code: http.StatusOK, body: `{"stream":{"stream_type":"rerun","game":"Chess","channel":{"status":"x","display_name":"A"}}}`, wantErr: twitch.ErrNotLive},
		{name: "missing game", code: http.StatusOK, body: `{"stream":{"stream_type":"live","channel":{"status":"x","display_name":"A"}}}`, wantErr: twitch.ErrMalformed},
		{name: "missing display name", code: http.StatusOK, body: `{"stream":{"stream_type":"live","game":"Chess","channel":{"status":"x"}}}`, wantErr: twitch.ErrMalformed},
		{name: "bad json", code: http.StatusOK, body: `{"stream":`, wantErr: twitch.ErrMalformed},
		{name: "server error", code: http.StatusBadGateway, body: "upstream down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.code)
				_, _ = w.Write([]byte(tc.body))
			})

			if _, ok := client.Status(context.Background(), "alice"); ok {
				t.Fatal("expected absent status")
			}
			_, err := client.Fetch(context.Background(), "alice")
			if err == nil {
				t.Fatal("expected classified error")
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil {
				var statusErr *twitch.StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != tc.code {
					t.Fatalf("expected StatusError %d, got %v", tc.code, err)
				}
			}
		})
	}
}

func TestFetchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	cfg := config.Default().API
	cfg.BaseURL = server.URL
	server.Close()

	client := twitch.NewClient(cfg, nil)
	if _, err := client.Fetch(context.Background(), "alice"); err == nil {
		t.Fatal("expected transport error")
	}
	if _, ok := client.Status(context.Background(), "alice"); ok {
		t.Fatal("expected absent status on transport failure")
	}
}

func TestFetchRejectsEmptyChannel(t *testing.T) {
	client := twitch.NewClient(config.Default().API, nil)
	if _, err := client.Fetch(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty channel")
	}
}

func TestParseStatusAllowsNullGameAndMissingLogo(t *testing.T) {
	status, err := twitch.ParseStatus("bob", []byte(`{"stream":{"stream_type":"live","game":null,"channel":{"status":"hi","display_name":"Bob"}}}`))
	if err != nil {
		t.Fatalf("ParseStatus returned error: %v", err)
	}
	if status.Activity != "" || status.IconURL != "" || status.DisplayName != "Bob" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestParseStatusRequiresStreamField(t *testing.T) {
	if _, err := twitch.ParseStatus("bob", []byte(`{"error":"Not Found"}`)); !errors.Is(err, twitch.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
