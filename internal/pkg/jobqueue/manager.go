package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Manager owns the global job queue and the daily export ticker.
type Manager struct {
	queue        *Queue
	exportTicker *time.Ticker
	stopCh       chan struct{}
	wg           sync.WaitGroup
	mu           sync.Mutex
	running      bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(3),
			stopCh: make(chan struct{}),
		}
		registerDefaultProcessors(globalManager.queue)
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the nightly usage export.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so the manager can be
	// restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.exportTicker = time.NewTicker(time.Hour)
	m.wg.Add(1)
	go m.exportWorker()
}

// Stop stops the queue and background workers.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	log.Info("[JobQueue Manager] Stopping")
	close(m.stopCh)
	m.running = false
	if m.exportTicker != nil {
		m.exportTicker.Stop()
	}
	m.wg.Wait()
	m.queue.Stop()
}

// exportWorker enqueues a usage export for the previous UTC day once that
// day is over. The ticker fires hourly; the job id dedupes via the export
// processor checking for an existing object.
func (m *Manager) exportWorker() {
	defer m.wg.Done()

	lastExported := ""
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.exportTicker.C:
			day := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
			if day == lastExported {
				continue
			}
			if _, err := m.queue.EnqueueJob(JobTypeUsageExport, map[string]interface{}{
				"day": day,
			}); err != nil {
				log.Errorf("[JobQueue Manager] Failed to enqueue usage export for %s: %v", day, err)
				continue
			}
			lastExported = day
		}
	}
}

// EnqueueEmail queues a transactional email for delivery.
func EnqueueEmail(to, subject, body string) error {
	_, err := GetManager().GetQueue().EnqueueJob(JobTypeSendEmail, map[string]interface{}{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	return err
}

// EnqueueWebhookArchive queues an S3 copy of a stored webhook delivery.
func EnqueueWebhookArchive(webhookEventID uint) error {
	_, err := GetManager().GetQueue().EnqueueJob(JobTypeArchiveWebhook, map[string]interface{}{
		"webhook_event_id": webhookEventID,
	})
	return err
}

// EnqueuePreview queues WebP preview generation for a generated image.
func EnqueuePreview(sourcePath, destDir string) error {
	_, err := GetManager().GetQueue().EnqueueJob(JobTypeGeneratePreview, map[string]interface{}{
		"source_path": sourcePath,
		"dest_dir":    destDir,
	})
	return err
}
