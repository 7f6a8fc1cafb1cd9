package jobqueue

import "time"

// JobType identifies the kind of background work a job carries.
type JobType string

const (
	// JobTypeSendEmail delivers a transactional email.
	JobTypeSendEmail JobType = "send_email"
	// JobTypeArchiveWebhook copies a stored webhook payload to S3.
	JobTypeArchiveWebhook JobType = "archive_webhook"
	// JobTypeGeneratePreview renders WebP previews for a generated image.
	JobTypeGeneratePreview JobType = "generate_preview"
	// JobTypeUsageExport exports one day of usage counters as CSV to S3.
	JobTypeUsageExport JobType = "usage_export"
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job is the unit of background work stored in Redis.
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
}

func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.ProcessedAt = &now
	j.UpdatedAt = now
}

func (j *Job) MarkAsCompleted() {
	j.Status = JobStatusCompleted
	j.UpdatedAt = time.Now()
}

func (j *Job) MarkAsFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMsg = errMsg
	j.RetryCount++
	j.UpdatedAt = time.Now()
}

func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}

// IsRetryable reports whether a failed job has retries left.
func (j *Job) IsRetryable() bool {
	return j.RetryCount <= j.MaxRetries
}

// StringValue reads a string field from the job payload.
func (j *Job) StringValue(key string) string {
	if v, ok := j.Payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// UintValue reads a numeric payload field. JSON round-trips numbers as
// float64, so both forms are accepted.
func (j *Job) UintValue(key string) uint {
	switch v := j.Payload[key].(type) {
	case float64:
		if v > 0 {
			return uint(v)
		}
	case int:
		if v > 0 {
			return uint(v)
		}
	case uint:
		return v
	}
	return 0
}
