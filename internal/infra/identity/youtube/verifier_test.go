package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"revix/internal/domain"
)

func channelServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestVerify_ReturnsFirstChannel(t *testing.T) {
	srv := channelServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/youtube/v3/channels" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("part") != "snippet" || r.URL.Query().Get("mine") != "true" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"UC123","snippet":{"title":"Demo","customUrl":"@demo"}},{"id":"UC999"}]}`))
	})
	v := NewVerifier(srv.URL, time.Second)

	identity, err := v.Verify(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := domain.VerifiedIdentity{Provider: ProviderName, ExternalAccountID: "UC123", DisplayName: "Demo", Handle: "@demo"}
	if identity != want {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerify_FailsClosed(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Invalid Credentials"}}`))
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"no channels": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items":[]}`))
		},
		"missing items": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"items":`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := channelServer(t, handler)
			_, err := NewVerifier(srv.URL, time.Second).Verify(context.Background(), "token")
			if err != domain.ErrInvalidCredential {
				t.Fatalf("expected invalid credential, got %v", err)
			}
			if err.Error() != "invalid or expired credential" {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestVerify_TimeoutIsInvalidCredential(t *testing.T) {
	release := make(chan struct{})
	srv := channelServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	_, err := NewVerifier(srv.URL, 50*time.Millisecond).Verify(context.Background(), "token")
	if err != domain.ErrInvalidCredential {
		t.Fatalf("expected invalid credential, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout was not enforced")
	}
}

func TestVerify_MissingCredential(t *testing.T) {
	_, err := NewVerifier("http://unused.invalid", time.Second).Verify(context.Background(), " ")
	if !errors.Is(err, domain.ErrUnauthorized) || err != domain.ErrMissingCredential {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestVerify_TransportFailure(t *testing.T) {
	v := NewVerifier("http://provider.test", time.Second, WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})))
	if _, err := v.Verify(context.Background(), "token"); err != domain.ErrInvalidCredential {
		t.Fatalf("expected invalid credential, got %v", err)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
