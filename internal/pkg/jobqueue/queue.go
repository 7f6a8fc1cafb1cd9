package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/cache"
)

const (
	jobKeyPrefix     = "job:"
	jobQueueKey      = "job_queue"
	jobProcessingKey = "job_processing"
	jobStatsKey      = "job_stats"

	DefaultMaxRetries = 3
	jobTTL            = 24 * time.Hour
)

// Processor handles one job type.
type Processor func(ctx context.Context, job *Job) error

// Queue manages background jobs using Redis.
type Queue struct {
	client     *redis.Client
	workers    int
	processors map[JobType]Processor
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a job queue with the given worker count.
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:     cache.GetClient(),
		workers:    workers,
		processors: make(map[JobType]Processor),
		stopCh:     make(chan struct{}),
	}
}

// Register binds a processor to a job type. Must happen before Start.
func (q *Queue) Register(jobType JobType, p Processor) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[jobType] = p
}

// Start launches the workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true
	log.Infof("[JobQueue] Starting %d workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}
	log.Info("[JobQueue] Stopping workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[JobQueue] All workers stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[JobQueue] Worker %d started", id)

	ctx := context.Background()
	for {
		select {
		case <-q.stopCh:
			log.Infof("[JobQueue] Worker %d stopping", id)
			return
		default:
			job, err := q.dequeueJob(ctx)
			if err != nil {
				if err != redis.Nil {
					log.Errorf("[JobQueue] Worker %d: dequeue error: %v", id, err)
					time.Sleep(time.Second)
				}
				continue
			}
			if job != nil {
				q.processJob(ctx, job)
			}
		}
	}
}

// EnqueueJob adds a new job to the queue.
func (q *Queue) EnqueueJob(jobType JobType, payload map[string]interface{}) (*Job, error) {
	ctx := context.Background()

	job := &Job{
		ID:         uuid.New().String(),
		Type:       jobType,
		Status:     JobStatusPending,
		Payload:    payload,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}

	pipe := q.client.Pipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, jobData, jobTTL)
	pipe.LPush(ctx, jobQueueKey, job.ID)
	pipe.HIncrBy(ctx, jobStatsKey, string(JobStatusPending), 1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	log.Infof("[JobQueue] Enqueued job %s (Type: %s)", job.ID, job.Type)
	return job, nil
}

// dequeueJob moves the next job id to the processing list atomically and
// loads its data.
func (q *Queue) dequeueJob(ctx context.Context) (*Job, error) {
	jobID, err := q.client.BRPopLPush(ctx, jobQueueKey, jobProcessingKey, time.Second).Result()
	if err != nil {
		return nil, err
	}

	jobData, err := q.client.Get(ctx, jobKeyPrefix+jobID).Result()
	if err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("job data not found for ID %s", jobID)
	}

	var job Job
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		q.client.LRem(ctx, jobProcessingKey, 1, jobID)
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", jobID, err)
	}
	return &job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	job.MarkAsProcessing()
	q.updateJob(ctx, job)

	q.mu.Lock()
	processor, ok := q.processors[job.Type]
	q.mu.Unlock()

	var err error
	if !ok {
		err = fmt.Errorf("no processor registered for job type: %s", job.Type)
	} else {
		log.Infof("[JobQueue] Processing job %s (Type: %s)", job.ID, job.Type)
		err = processor(ctx, job)
	}

	if err != nil {
		log.Errorf("[JobQueue] Job %s failed: %v", job.ID, err)
		job.MarkAsFailed(err.Error())

		if job.IsRetryable() {
			log.Infof("[JobQueue] Retrying job %s (Attempt %d/%d)", job.ID, job.RetryCount, job.MaxRetries)
			job.MarkAsRetrying()
			q.updateJob(ctx, job)
			// Back off linearly with the attempt count before requeueing.
			time.AfterFunc(time.Minute*time.Duration(job.RetryCount), func() {
				q.client.LPush(context.Background(), jobQueueKey, job.ID)
			})
		} else {
			log.Errorf("[JobQueue] Job %s permanently failed after %d retries", job.ID, job.RetryCount)
			q.updateJob(ctx, job)
			q.client.HIncrBy(ctx, jobStatsKey, string(JobStatusFailed), 1)
		}
	} else {
		job.MarkAsCompleted()
		q.client.HIncrBy(ctx, jobStatsKey, string(JobStatusCompleted), 1)
		q.client.Del(ctx, jobKeyPrefix+job.ID)
	}

	q.client.LRem(ctx, jobProcessingKey, 1, job.ID)
}

func (q *Queue) updateJob(ctx context.Context, job *Job) {
	jobData, err := json.Marshal(job)
	if err != nil {
		log.Errorf("[JobQueue] Failed to marshal job %s: %v", job.ID, err)
		return
	}
	if err := q.client.Set(ctx, jobKeyPrefix+job.ID, jobData, jobTTL).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to update job %s: %v", job.ID, err)
	}
}

// GetJobStats returns counters per terminal job status.
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	stats, err := q.client.HGetAll(ctx, jobStatsKey).Result()
	if err != nil {
		return nil, err
	}
	result := make(map[JobStatus]int64)
	for status, count := range stats {
		if n, err := json.Number(count).Int64(); err == nil {
			result[JobStatus(status)] = n
		}
	}
	return result, nil
}

// GetQueueSize returns the number of pending jobs.
func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, jobQueueKey).Result()
}
