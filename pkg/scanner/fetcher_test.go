package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fossid-tools/workbench-archiver/pkg/workbench"
)

// infoServer answers get_information requests, failing any scan code with
// a "fail" prefix.
func infoServer(t *testing.T, inFlight *atomic.Int32, maxInFlight *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if inFlight != nil {
			cur := inFlight.Add(1)
			for {
				prev := maxInFlight.Load()
				if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
					break
				}
			}
			defer inFlight.Add(-1)
			time.Sleep(10 * time.Millisecond)
		}

		var req struct {
			Data map[string]any `json:"data"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		code, _ := req.Data["scan_code"].(string)

		if strings.HasPrefix(code, "fail") {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := map[string]any{
			"operation": "test",
			"status":    "1",
			"data": map[string]any{
				"code":    code,
				"name":    "Scan " + code,
				"updated": "2024-01-01 00:00:00",
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newFetcherClient(t *testing.T, serverURL string) *workbench.Client {
	t.Helper()

	client, err := workbench.NewClient(workbench.Config{
		BaseURL:        serverURL,
		Username:       "tester",
		Token:          "secret",
		RequestTimeout: 2 * time.Second,
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestFetchBatchReturnsAllOnSuccess(t *testing.T) {
	server := infoServer(t, nil, nil)
	defer server.Close()

	fetcher := NewFetcher(newFetcherClient(t, server.URL), 4)

	codes := make([]string, 20)
	for i := range codes {
		codes[i] = fmt.Sprintf("scan_%d", i)
	}

	got := fetcher.FetchBatch(context.Background(), codes)
	if len(got) != 20 {
		t.Fatalf("results = %d, want 20", len(got))
	}
	for _, code := range codes {
		info, ok := got[code]
		if !ok {
			t.Fatalf("missing result for %s", code)
		}
		if info.Code != code {
			t.Errorf("result code = %q, want %q", info.Code, code)
		}
	}
}

func TestFetchBatchOmitsFailures(t *testing.T) {
	server := infoServer(t, nil, nil)
	defer server.Close()

	fetcher := NewFetcher(newFetcherClient(t, server.URL), 4)

	codes := []string{"scan_1", "fail_1", "scan_2", "fail_2", "scan_3", "fail_3"}
	got := fetcher.FetchBatch(context.Background(), codes)

	if len(got) != 3 {
		t.Fatalf("results = %d, want 3 (failures omitted, not fatal)", len(got))
	}
	for _, code := range []string{"scan_1", "scan_2", "scan_3"} {
		if _, ok := got[code]; !ok {
			t.Errorf("missing successful result for %s", code)
		}
	}
	for _, code := range []string{"fail_1", "fail_2", "fail_3"} {
		if _, ok := got[code]; ok {
			t.Errorf("failed code %s present in results", code)
		}
	}
}

func TestFetchBatchBoundsConcurrency(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	server := infoServer(t, &inFlight, &maxInFlight)
	defer server.Close()

	fetcher := NewFetcher(newFetcherClient(t, server.URL), 3)

	codes := make([]string, 30)
	for i := range codes {
		codes[i] = fmt.Sprintf("scan_%d", i)
	}
	fetcher.FetchBatch(context.Background(), codes)

	if got := maxInFlight.Load(); got > 3 {
		t.Errorf("max in-flight requests = %d, want <= 3", got)
	}
}

func TestFetchBatchEmptyInput(t *testing.T) {
	fetcher := NewFetcher(newFetcherClient(t, "https://wb.example.com"), 4)
	if got := fetcher.FetchBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("results = %v, want empty", got)
	}
}
