package services

import (
	"encoding/json"
	"sync"

	"github.com/brightpath/opsconsole/backend/internal/config"
	"github.com/brightpath/opsconsole/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTypeNotification = "notification:deliver"

// Notification kinds
const (
	NotifyAssignmentCreated = "assignment_created"
	NotifyAssignmentUpdated = "assignment_updated"
	NotifyAssignmentRemoved = "assignment_removed"
	NotifyStaleAssignment   = "stale_assignment"
	NotifyMemberDelegated   = "member_delegated"
)

// NotificationTask describes one message for the external delivery
// service. This subsystem only enqueues; delivery (email, chat) is
// handled by a separate consumer.
type NotificationTask struct {
	TaskID    string `json:"task_id"`
	Kind      string `json:"kind"`
	ProjectID uint   `json:"project_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
	TargetID  uint   `json:"target_id"` // recipient user id
	Message   string `json:"message"`
}

// NotificationQueue abstracts how notification tasks reach the delivery
// consumer.
type NotificationQueue interface {
	// Enqueue adds a task to the queue
	Enqueue(task *NotificationTask) error
	// IsAsync returns true if the queue hands tasks to an external worker
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalNotifyQueue NotificationQueue
	notifyQueueOnce   sync.Once
)

// InitNotificationQueue initializes the global queue based on config:
// Redis-backed asynq when enabled, otherwise a log-only fallback.
func InitNotificationQueue(cfg *config.Config) NotificationQueue {
	notifyQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncNotifyQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[Notify] Redis unavailable, falling back to log-only queue: %v", err)
				globalNotifyQueue = NewLogNotifyQueue()
			} else {
				logger.Infof("[Notify] async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalNotifyQueue = queue
			}
		} else {
			logger.Infof("[Notify] log-only queue initialized (Redis disabled)")
			globalNotifyQueue = NewLogNotifyQueue()
		}
	})
	return globalNotifyQueue
}

// GetNotificationQueue returns the global queue instance
func GetNotificationQueue() NotificationQueue {
	return globalNotifyQueue
}

// AsyncNotifyQueue implements NotificationQueue using asynq (Redis-based)
type AsyncNotifyQueue struct {
	client *asynq.Client
}

func NewAsyncNotifyQueue(cfg *config.RedisConfig) (*AsyncNotifyQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Ping Redis through the inspector to verify the connection
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()
	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncNotifyQueue{client: client}, nil
}

func (q *AsyncNotifyQueue) Enqueue(task *NotificationTask) error {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeNotification, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("notifications"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().
		Str("task_id", task.TaskID).
		Str("queue", info.Queue).
		Str("kind", task.Kind).
		Msg("notification enqueued")
	return nil
}

func (q *AsyncNotifyQueue) IsAsync() bool { return true }

func (q *AsyncNotifyQueue) Close() error {
	return q.client.Close()
}

// LogNotifyQueue is the fallback when no Redis is configured: tasks are
// recorded in the structured log so nothing is silently dropped.
type LogNotifyQueue struct{}

func NewLogNotifyQueue() *LogNotifyQueue {
	return &LogNotifyQueue{}
}

func (q *LogNotifyQueue) Enqueue(task *NotificationTask) error {
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}
	logger.Info().
		Str("task_id", task.TaskID).
		Str("kind", task.Kind).
		Uint("target_id", task.TargetID).
		Str("message", task.Message).
		Msg("notification (log-only queue)")
	return nil
}

func (q *LogNotifyQueue) IsAsync() bool { return false }

func (q *LogNotifyQueue) Close() error { return nil }
