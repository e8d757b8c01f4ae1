package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidToken(t *testing.T) {
	cases := []struct {
		name   string
		secret string
		header string
		want   bool
	}{
		{"matching token", "s3cret", "Bearer s3cret", true},
		{"wrong token", "s3cret", "Bearer nope", false},
		{"missing bearer prefix", "s3cret", "s3cret", false},
		{"lowercase scheme", "s3cret", "bearer s3cret", false},
		{"empty header", "s3cret", "", false},
		{"empty secret rejects everything", "", "Bearer ", false},
		{"empty secret rejects empty header", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := validToken(c.secret, c.header); got != c.want {
				t.Errorf("validToken(%q, %q) = %v, want %v", c.secret, c.header, got, c.want)
			}
		})
	}
}

func TestRequireToken(t *testing.T) {
	var reached bool
	h := requireToken("s3cret", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if reached {
		t.Fatal("handler reached without credentials")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !reached {
		t.Fatal("handler not reached with valid token")
	}
}
