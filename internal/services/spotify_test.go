package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/desertthunder/biotune/internal/shared"
	tu "github.com/desertthunder/biotune/internal/testing"
)

func newTestSpotify(t *testing.T, authURL, apiURL string) *SpotifyClient {
	t.Helper()
	srv, err := NewSpotifyClient(SpotifyOptions{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://127.0.0.1:8080/callback",
		AuthURL:      authURL,
		APIURL:       apiURL,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return srv
}

// tokenServer serves the token endpoint with a fixed status and body, recording the last form it received.
func tokenServer(t *testing.T, status int, body string, form *url.Values) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		user, pass, ok := r.BasicAuth()
		if !ok || user != "test_client_id" || pass != "test_client_secret" {
			t.Errorf("expected client credentials in basic auth, got %q %q", user, pass)
		}

		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		if form != nil {
			*form = r.PostForm
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSpotifyClient(t *testing.T) {
	t.Run("NewSpotifyClient", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv := newTestSpotify(t, "", "")
			if srv.apiURL != SpotifyAPIBaseURL {
				t.Errorf("expected default API URL, got %s", srv.apiURL)
			}
			if srv.config.Endpoint.TokenURL != SpotifyAuthBaseURL+"/api/token" {
				t.Errorf("unexpected token URL %s", srv.config.Endpoint.TokenURL)
			}
		})

		tests := []struct {
			name string
			opts SpotifyOptions
			want error
		}{
			{"Missing Client ID", SpotifyOptions{ClientSecret: "s", RedirectURI: "http://localhost/cb"}, shared.ErrMissingCredentials},
			{"Missing Client Secret", SpotifyOptions{ClientID: "c", RedirectURI: "http://localhost/cb"}, shared.ErrMissingCredentials},
			{"Malformed Redirect URI", SpotifyOptions{ClientID: "c", ClientSecret: "s", RedirectURI: "not a url"}, shared.ErrInvalidConfig},
			{"Empty Redirect URI", SpotifyOptions{ClientID: "c", ClientSecret: "s"}, shared.ErrInvalidConfig},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewSpotifyClient(tt.opts)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("BuildAuthorizationURL", func(t *testing.T) {
		srv := newTestSpotify(t, "", "")

		raw, err := srv.BuildAuthorizationURL("opaque+state/=")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid URL %q: %v", raw, err)
		}

		if u.Host != "accounts.spotify.com" || u.Path != "/en/authorize" {
			t.Errorf("unexpected authorize endpoint %s%s", u.Host, u.Path)
		}

		q := u.Query()
		expected := map[string]string{
			"client_id":     "test_client_id",
			"redirect_uri":  "http://127.0.0.1:8080/callback",
			"response_type": "code",
			"scope":         "user-read-playback-state",
			"state":         "opaque+state/=",
		}
		for k, v := range expected {
			if got := q.Get(k); got != v {
				t.Errorf("expected %s=%q, got %q", k, v, got)
			}
		}

		t.Run("Empty State", func(t *testing.T) {
			if _, err := srv.BuildAuthorizationURL(""); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("ExchangeCode", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var form url.Values
			server := tokenServer(t, http.StatusOK,
				`{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt"}`, &form)
			srv := newTestSpotify(t, server.URL, "")

			pair, err := srv.ExchangeCode(context.Background(), "the-code")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pair.AccessToken != "at" || pair.RefreshToken != "rt" {
				t.Errorf("unexpected token pair %+v", pair)
			}

			if form.Get("grant_type") != "authorization_code" {
				t.Errorf("expected authorization_code grant, got %q", form.Get("grant_type"))
			}
			if form.Get("code") != "the-code" {
				t.Errorf("expected code in form, got %q", form.Get("code"))
			}
			if form.Get("redirect_uri") != "http://127.0.0.1:8080/callback" {
				t.Errorf("expected redirect_uri in form, got %q", form.Get("redirect_uri"))
			}
		})

		t.Run("Missing Refresh Token", func(t *testing.T) {
			server := tokenServer(t, http.StatusOK, `{"access_token":"at","token_type":"Bearer"}`, nil)
			srv := newTestSpotify(t, server.URL, "")

			if _, err := srv.ExchangeCode(context.Background(), "code"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Rejected Code", func(t *testing.T) {
			server := tokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)
			srv := newTestSpotify(t, server.URL, "")

			if _, err := srv.ExchangeCode(context.Background(), "code"); !errors.Is(err, shared.ErrTokenRejected) {
				t.Errorf("expected ErrTokenRejected, got %v", err)
			}
		})

		t.Run("Empty Code", func(t *testing.T) {
			srv := newTestSpotify(t, "", "")
			if _, err := srv.ExchangeCode(context.Background(), ""); !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Rotated Refresh Token", func(t *testing.T) {
			var form url.Values
			server := tokenServer(t, http.StatusOK,
				`{"access_token":"new-at","token_type":"Bearer","expires_in":3600,"refresh_token":"new-rt"}`, &form)
			srv := newTestSpotify(t, server.URL, "")

			pair, err := srv.Refresh(context.Background(), "old-rt")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pair.AccessToken != "new-at" || pair.RefreshToken != "new-rt" {
				t.Errorf("unexpected token pair %+v", pair)
			}
			if form.Get("grant_type") != "refresh_token" || form.Get("refresh_token") != "old-rt" {
				t.Errorf("unexpected refresh form %v", form)
			}
		})

		t.Run("Refresh Token Not Rotated", func(t *testing.T) {
			server := tokenServer(t, http.StatusOK, `{"access_token":"new-at","token_type":"Bearer","expires_in":3600}`, nil)
			srv := newTestSpotify(t, server.URL, "")

			pair, err := srv.Refresh(context.Background(), "old-rt")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if pair.RefreshToken != "" {
				t.Errorf("expected empty refresh token, got %q", pair.RefreshToken)
			}
		})

		tests := []struct {
			name   string
			status int
			want   error
		}{
			{"Bad Request", http.StatusBadRequest, shared.ErrTokenRejected},
			{"Unauthorized", http.StatusUnauthorized, shared.ErrTokenExpired},
			{"Server Error", http.StatusInternalServerError, shared.ErrAPIRequest},
			{"Rate Limited", http.StatusTooManyRequests, shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := tokenServer(t, tt.status, `{"error":"nope"}`, nil)
				srv := newTestSpotify(t, server.URL, "")

				_, err := srv.Refresh(context.Background(), "rt")
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		t.Run("Transport Failure", func(t *testing.T) {
			srv, err := NewSpotifyClient(SpotifyOptions{
				ClientID:     "c",
				ClientSecret: "s",
				RedirectURI:  "http://localhost/cb",
				HTTPClient:   &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if _, err := srv.Refresh(context.Background(), "rt"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("NowPlaying", func(t *testing.T) {
		playing := func(status int, body string) *httptest.Server {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/me/player/currently-playing" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if r.URL.Query().Get("market") != "from_token" {
					t.Errorf("expected market=from_token, got %q", r.URL.RawQuery)
				}
				if r.Header.Get("Authorization") != "Bearer at" {
					t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
				}
				w.WriteHeader(status)
				w.Write([]byte(body))
			}))
			t.Cleanup(server.Close)
			return server
		}

		t.Run("Track Playing", func(t *testing.T) {
			server := playing(http.StatusOK, `{
				"is_playing": true,
				"currently_playing_type": "track",
				"item": {"id": "4uLU6hMCjMI75M1A2tKUQC", "name": "Never Gonna Give You Up", "artists": [{"name": "Rick Astley"}]}
			}`)
			srv := newTestSpotify(t, "", server.URL)

			np, err := srv.NowPlaying(context.Background(), "at")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if np == nil {
				t.Fatal("expected a track")
			}
			if np.TrackID != "4uLU6hMCjMI75M1A2tKUQC" || np.TrackName != "Never Gonna Give You Up" || !np.IsPlaying {
				t.Errorf("unexpected now playing %+v", np)
			}
		})

		t.Run("No Content", func(t *testing.T) {
			server := playing(http.StatusNoContent, "")
			srv := newTestSpotify(t, "", server.URL)

			np, err := srv.NowPlaying(context.Background(), "at")
			if err != nil || np != nil {
				t.Errorf("expected (nil, nil), got (%+v, %v)", np, err)
			}
		})

		t.Run("Null Item", func(t *testing.T) {
			server := playing(http.StatusOK, `{"is_playing": true, "currently_playing_type": "ad", "item": null}`)
			srv := newTestSpotify(t, "", server.URL)

			np, err := srv.NowPlaying(context.Background(), "at")
			if err != nil || np != nil {
				t.Errorf("expected (nil, nil), got (%+v, %v)", np, err)
			}
		})

		tests := []struct {
			name   string
			status int
			body   string
			want   error
		}{
			{"Unauthorized", http.StatusUnauthorized, `{"error":{"status":401}}`, shared.ErrTokenExpired},
			{"Bad Request", http.StatusBadRequest, `{"error":{"status":400}}`, shared.ErrTokenExpired},
			{"Service Unavailable", http.StatusServiceUnavailable, "", shared.ErrAPIRequest},
			{"Malformed Body", http.StatusOK, "{not json", shared.ErrAPIRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := playing(tt.status, tt.body)
				srv := newTestSpotify(t, "", server.URL)

				_, err := srv.NowPlaying(context.Background(), "at")
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}

		t.Run("Transport Failure", func(t *testing.T) {
			srv, err := NewSpotifyClient(SpotifyOptions{
				ClientID:     "c",
				ClientSecret: "s",
				RedirectURI:  "http://localhost/cb",
				HTTPClient:   &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))},
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			if _, err := srv.NowPlaying(context.Background(), "at"); !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			srv, err := NewSpotifyClient(SpotifyOptions{
				ClientID:     "c",
				ClientSecret: "s",
				RedirectURI:  "http://localhost/cb",
				HTTPClient:   &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			np, err := srv.NowPlaying(context.Background(), "at")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if np != nil {
				t.Errorf("expected no track, got %+v", np)
			}
		})
	})

	t.Run("Service Interface", func(t *testing.T) {
		var _ SpotifyService = newTestSpotify(t, "", "")
	})
}
