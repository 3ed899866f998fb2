package gcpclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"revix/internal/config"

	"golang.org/x/oauth2"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestClient_AccessSecret(t *testing.T) {
	const token = "token-123"
	projectID := "project-1"
	secretID := "revix-signing"
	payload := []byte("hello")

	var calls int
	client := New("https://secretmanager.example", projectID, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			calls++
			if r.Header.Get("Authorization") != "Bearer "+token {
				t.Fatalf("unexpected auth header: %s", r.Header.Get("Authorization"))
			}
			want := "/v1/projects/" + projectID + "/secrets/" + secretID + "/versions/latest:access"
			if r.Method != http.MethodGet || r.URL.Path != want {
				t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			body, _ := json.Marshal(map[string]any{
				"payload": map[string]string{
					"data": base64.StdEncoding.EncodeToString(payload),
				},
			})
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(bytes.NewReader(body)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	out, err := client.AccessSecret(context.Background(), secretID)
	if err != nil {
		t.Fatalf("access secret: %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("unexpected payload: %s", string(out))
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestClient_AccessSecretErrors(t *testing.T) {
	client := New("https://secretmanager.example", "p", oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}))
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(bytes.NewReader(nil)),
				Header:     make(http.Header),
			}, nil
		}),
	}
	if _, err := client.AccessSecret(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for 404")
	}
	if _, err := client.AccessSecret(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty secret id")
	}
}

func TestNewFromConfigRequiresConfig(t *testing.T) {
	if _, err := NewFromConfig(config.Config{}); err == nil {
		t.Fatal("expected error for missing gcp config")
	}
}
