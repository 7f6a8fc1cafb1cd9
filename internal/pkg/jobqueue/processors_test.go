package jobqueue

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func TestGetArchiveClientDisabledIsNoop(t *testing.T) {
	t.Setenv("S3_ARCHIVE_ENABLED", "false")

	client, cfg, err := getArchiveClient()
	if err != nil {
		t.Fatalf("getArchiveClient() error = %v", err)
	}
	if client != nil {
		t.Fatal("disabled archiving must not build a client")
	}
	if cfg == nil || cfg.IsEnabled() {
		t.Fatal("config must report archiving disabled")
	}
}

func TestGetArchiveClientSharedAcrossWorkers(t *testing.T) {
	// Fake S3 endpoint: HeadBucket succeeds, so the client initializes
	// without touching the network.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("S3_ARCHIVE_ENABLED", "true")
	t.Setenv("S3_ACCESS_KEY_ID", "test-key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "test-secret")
	t.Setenv("S3_BUCKET_NAME", "archive-test")
	t.Setenv("S3_ENDPOINT_URL", srv.URL)

	archiveMu.Lock()
	archiveClient = nil
	archiveMu.Unlock()
	t.Cleanup(func() {
		archiveMu.Lock()
		archiveClient = nil
		archiveMu.Unlock()
	})

	const workers = 8
	clients := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client, _, err := getArchiveClient()
			if err != nil {
				t.Errorf("worker %d: getArchiveClient() error = %v", i, err)
				return
			}
			clients[i] = client
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if clients[i] != clients[0] {
			t.Fatalf("worker %d got a different client instance", i)
		}
	}
}
