package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config
	now    func() time.Time

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		now:    time.Now,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("failed to persist notifications", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("persisted notifications", "worker", id, "count", len(notifications))
		}

		// Live delivery does not depend on persistence.
		for _, n := range notifications {
			s.publish(n)
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
		drain:
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

// Dispatch queues a notification. A full queue drops it with a warning.
func (s *service) Dispatch(ctx context.Context, req notification.CreateNotificationRequest) {
	select {
	case s.queue <- req:
	default:
		slog.WarnContext(ctx, "dropping notification",
			"type", req.Type, "error", notification.ErrQueueFull)
	}
}

func (s *service) newNotification(req notification.CreateNotificationRequest) notification.Notification {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return notification.Notification{
		ID:            id.String(),
		RecipientID:   req.RecipientID,
		RecipientRole: req.RecipientRole,
		Type:          req.Type,
		Title:         req.Title,
		Message:       req.Message,
		Data:          req.Data,
		CreatedAt:     s.now().UTC(),
	}
}

func (s *service) publish(n notification.Notification) {
	var topics []string
	if n.RecipientID != nil {
		topics = append(topics, sse.EmployeeTopic(*n.RecipientID))
	}
	if n.RecipientRole != nil {
		topics = append(topics, sse.RoleTopic(*n.RecipientRole))
	}
	s.hub.Publish(sse.Event{Event: "notification", Data: toResponse(n)}, topics...)
}

// toResponse converts a Notification entity to NotificationResponse
func toResponse(n notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:            n.ID,
		RecipientID:   n.RecipientID,
		RecipientRole: n.RecipientRole,
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		Data:          n.Data,
		CreatedAt:     n.CreatedAt,
	}
}

// GetNotifications retrieves paginated notifications for the actor
func (s *service) GetNotifications(ctx context.Context, actor user.Actor, page, pageSize int) (notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.ListForRecipient(ctx, actor.EmployeeID, string(actor.Role), page, pageSize)
	if err != nil {
		return notification.NotificationListResponse{}, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}

	return notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// Subscribe creates an SSE subscription for the actor's employee and role topics
func (s *service) Subscribe(ctx context.Context, actor user.Actor) (<-chan notification.SSEEvent, func()) {
	topics := []string{sse.RoleTopic(string(actor.Role))}
	if actor.EmployeeID != "" {
		topics = append(topics, sse.EmployeeTopic(actor.EmployeeID))
	}
	ch, cleanup := s.hub.Subscribe(topics...)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
