package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func ollamaStub(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"{\"sentiment\":\"Positive\",\"intent\":\"Praise\"}"},"done":true}` + "\n"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func triageEnv(t *testing.T, aiURL string) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("AI_BASE_URL", aiURL)
	t.Setenv("AI_RPS", "100")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("TRIAGE_WORKERS", "2")
}

func TestRun_ExitCodes(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		business string
		want     int
	}{
		{"all businesses", http.StatusOK, "", 0},
		{"single business", http.StatusOK, "The Local Cafe", 0},
		{"AI down", http.StatusInternalServerError, "", 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			triageEnv(t, ollamaStub(t, tc.status).URL)
			if got := run(tc.business); got != tc.want {
				t.Fatalf("exit code %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRun_UnknownStoreBackend(t *testing.T) {
	triageEnv(t, ollamaStub(t, http.StatusOK).URL)
	t.Setenv("STORE_BACKEND", "postgres")
	if got := run(""); got != 1 {
		t.Fatalf("exit code %d, want 1", got)
	}
}
