package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSystemRoutes(t *testing.T) {
	env := setupServer(t)

	tests := []struct {
		name string
		path string
		want map[string]string
	}{
		{
			name: "Health",
			path: "/health",
			want: map[string]string{"status": "ok", "service": "studybuddy"},
		},
		{
			name: "Version",
			path: "/version",
			want: map[string]string{"version": "test", "buildTime": "now"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := http.Get(env.srv.URL + tc.path)
			if err != nil {
				t.Fatalf("get %s: %v", tc.path, err)
			}
			defer res.Body.Close()
			if res.StatusCode != http.StatusOK {
				t.Fatalf("expected 200 got %d", res.StatusCode)
			}
			if ct := res.Header.Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected json content-type, got %q", ct)
			}

			var got map[string]string
			if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("unexpected body %v", got)
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Fatalf("%s: want %q got %q", k, v, got[k])
				}
			}
		})
	}

	// system routes are open; the rest of /v1 is not
	res, err := http.Get(env.srv.URL + "/v1/matches")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for protected route, got %d", res.StatusCode)
	}
}
