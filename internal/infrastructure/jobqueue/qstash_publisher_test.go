package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lapollita/polla-api/internal/platform/logging"
)

func TestQStashPublisher_Publish(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotDedup, gotForward, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotDedup = r.Header.Get("Upstash-Deduplication-Id")
		gotForward = r.Header.Get("Upstash-Forward-X-Internal-Job-Token")
		raw, _ := io.ReadAll(r.Body)
		gotBody = strings.TrimSpace(string(raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://api.example.com",
		Retries:          3,
		InternalJobToken: "job-secret",
	}, logging.NewNop())

	err := publisher.Publish(context.Background(), "v1/internal/jobs/rescore", map[string]string{"poolId": "pool-1"}, "rescore:pool-1")
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if gotPath != "/v2/publish/https://api.example.com/v1/internal/jobs/rescore" {
		t.Fatalf("unexpected publish path: %s", gotPath)
	}
	if gotAuth != "Bearer qstash-token" {
		t.Fatalf("unexpected authorization header: %s", gotAuth)
	}
	if gotDedup != "rescore:pool-1" {
		t.Fatalf("unexpected deduplication id: %s", gotDedup)
	}
	if gotForward != "job-secret" {
		t.Fatalf("unexpected forwarded job token: %s", gotForward)
	}
	if gotBody != `{"poolId":"pool-1"}` {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestQStashPublisher_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       srv.URL,
		Token:         "qstash-token",
		TargetBaseURL: "https://api.example.com",
	}, logging.NewNop())

	if err := publisher.Publish(context.Background(), "/v1/internal/jobs/rescore", nil, ""); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestQStashPublisher_RequiresPath(t *testing.T) {
	t.Parallel()

	publisher := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       "https://qstash.example.com",
		Token:         "qstash-token",
		TargetBaseURL: "https://api.example.com",
	}, logging.NewNop())

	if err := publisher.Publish(context.Background(), "  ", nil, ""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		delay time.Duration
		want  string
	}{
		{0, "0s"},
		{-time.Second, "0s"},
		{90 * time.Second, "90s"},
		{1500 * time.Millisecond, "2s"},
	}
	for _, tc := range cases {
		if got := normalizeDelay(tc.delay); got != tc.want {
			t.Fatalf("normalizeDelay(%v) = %q, want %q", tc.delay, got, tc.want)
		}
	}
}

func TestValidateHTTPBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := validateHTTPBaseURL("ftp://example.com"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	if _, err := validateHTTPBaseURL("   "); err == nil {
		t.Fatal("expected error for empty value")
	}

	got, err := validateHTTPBaseURL("https://example.com/")
	if err != nil {
		t.Fatalf("validateHTTPBaseURL error: %v", err)
	}
	if got != "https://example.com" {
		t.Fatalf("unexpected normalized url: %s", got)
	}
}
