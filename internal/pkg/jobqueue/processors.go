package jobqueue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/database"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/imagetool"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/mail"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/s3archive"
)

func registerDefaultProcessors(q *Queue) {
	q.Register(JobTypeSendEmail, processSendEmail)
	q.Register(JobTypeArchiveWebhook, processArchiveWebhook)
	q.Register(JobTypeGeneratePreview, processGeneratePreview)
	q.Register(JobTypeUsageExport, processUsageExport)
}

func processSendEmail(_ context.Context, job *Job) error {
	to := job.StringValue("to")
	subject := job.StringValue("subject")
	body := job.StringValue("body")
	if to == "" || subject == "" {
		return fmt.Errorf("email job %s missing recipient or subject", job.ID)
	}
	return mail.SendMail(to, subject, body)
}

// archiveClient lazily initializes the shared S3 client. Jobs fail and
// retry while S3 is unreachable; when archiving is disabled they succeed
// as no-ops. The mutex keeps concurrent workers from racing the init;
// a failed init is not cached so the next job retries it.
var (
	archiveMu     sync.Mutex
	archiveClient *s3archive.Client
)

func getArchiveClient() (*s3archive.Client, *s3archive.Config, error) {
	cfg, err := s3archive.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.IsEnabled() {
		return nil, cfg, nil
	}
	archiveMu.Lock()
	defer archiveMu.Unlock()
	if archiveClient == nil {
		client, err := s3archive.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		archiveClient = client
	}
	return archiveClient, cfg, nil
}

func processArchiveWebhook(ctx context.Context, job *Job) error {
	eventID := job.UintValue("webhook_event_id")
	if eventID == 0 {
		return fmt.Errorf("archive job %s missing webhook_event_id", job.ID)
	}

	client, cfg, err := getArchiveClient()
	if err != nil {
		return err
	}
	if client == nil {
		log.Debugf("[JobQueue] S3 archiving disabled, skipping webhook event %d", eventID)
		return nil
	}

	var event models.BillingWebhookEvent
	if err := database.GetDB().First(&event, eventID).Error; err != nil {
		return fmt.Errorf("failed to load webhook event %d: %w", eventID, err)
	}

	key := cfg.WebhookObjectKey(event.Provider, event.ProviderEventID, event.CreatedAt)
	return client.ArchiveWebhookPayload(ctx, key, []byte(event.PayloadJSON))
}

func processGeneratePreview(_ context.Context, job *Job) error {
	sourcePath := job.StringValue("source_path")
	destDir := job.StringValue("dest_dir")
	if sourcePath == "" || destDir == "" {
		return fmt.Errorf("preview job %s missing source_path or dest_dir", job.ID)
	}
	_, err := imagetool.GeneratePreviews(sourcePath, destDir)
	return err
}

func processUsageExport(ctx context.Context, job *Job) error {
	day := job.StringValue("day")
	if day == "" {
		return fmt.Errorf("export job %s missing day", job.ID)
	}

	client, cfg, err := getArchiveClient()
	if err != nil {
		return err
	}
	if client == nil {
		return nil
	}

	key := cfg.UsageExportObjectKey(day)
	exists, err := client.ObjectExists(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	var records []models.UsageRecord
	if err := database.GetDB().Where("usage_date = ?", day).Find(&records).Error; err != nil {
		return fmt.Errorf("failed to load usage records for %s: %w", day, err)
	}

	var sb strings.Builder
	sb.WriteString("actor_key,category,usage_date,minutes\n")
	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%d\n", rec.ActorKey, rec.Category, rec.UsageDate, rec.Minutes))
	}

	if err := client.ArchiveUsageExport(ctx, key, []byte(sb.String())); err != nil {
		return err
	}
	log.Infof("[JobQueue] Exported %d usage rows for %s at %s", len(records), day, time.Now().Format(time.RFC3339))
	return nil
}
