package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/metrics"
	"meli-reconciler/pkg/apperror"

	"github.com/rs/zerolog"
)

// NotificationConfig tunes webhook intake.
type NotificationConfig struct {
	DedupeTTL       time.Duration
	DispatchTimeout time.Duration
}

// NotificationService stores webhook deliveries and fans stock-location
// changes out to the inventory dispatcher.
type NotificationService struct {
	repo       ports.NotificationRepository
	dedupe     ports.DeliveryDedupe
	dispatcher ports.InventoryDispatcher
	metrics    *metrics.Metrics
	cfg        NotificationConfig
	log        zerolog.Logger
	now        func() time.Time

	inflight sync.WaitGroup
}

// NewNotificationService creates the intake service. dedupe, dispatcher and
// m may be nil.
func NewNotificationService(
	repo ports.NotificationRepository,
	dedupe ports.DeliveryDedupe,
	dispatcher ports.InventoryDispatcher,
	m *metrics.Metrics,
	cfg NotificationConfig,
	log zerolog.Logger,
) *NotificationService {
	if cfg.DispatchTimeout <= 0 {
		cfg.DispatchTimeout = 30 * time.Second
	}
	return &NotificationService{
		repo:       repo,
		dedupe:     dedupe,
		dispatcher: dispatcher,
		metrics:    m,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Receive upserts the delivery by id. Redelivered notifications land on the
// same row; the dedupe only suppresses repeated side effects.
func (s *NotificationService) Receive(ctx context.Context, in ports.NotificationInput) (*domain.Notification, error) {
	in.Resource = strings.TrimSpace(in.Resource)
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Resource == "" {
		return nil, apperror.ErrInvalidNotification("resource is required")
	}
	if in.Topic == "" {
		return nil, apperror.ErrInvalidNotification("topic is required")
	}

	n := &domain.Notification{
		ID:            strings.TrimSpace(in.ID),
		Resource:      in.Resource,
		UserID:        in.UserID,
		Topic:         in.Topic,
		ApplicationID: in.ApplicationID,
		Attempts:      in.Attempts,
		Received:      s.now().UTC(),
	}
	if in.Received != nil {
		n.Received = in.Received.UTC()
	}
	if in.Sent != nil {
		n.Sent = in.Sent.UTC()
	}
	if n.ID == "" {
		n.ID = domain.NotificationID(n.Topic, n.Resource, n.UserID, n.Received)
	}

	if err := s.repo.Upsert(ctx, n); err != nil {
		s.count(n.Topic, "error")
		return nil, apperror.ErrDatabaseError(err)
	}

	if !s.firstDelivery(ctx, n.ID) {
		s.count(n.Topic, "duplicate")
		s.log.Debug().Str("notification_id", n.ID).Msg("notifications: duplicate delivery")
		return n, nil
	}
	s.count(n.Topic, "stored")

	if n.Topic == domain.TopicStockLocations {
		s.dispatch(n)
	}
	return n, nil
}

// firstDelivery reports whether id was not seen within the dedupe window.
// A failing dedupe store lets the delivery through.
func (s *NotificationService) firstDelivery(ctx context.Context, id string) bool {
	if s.dedupe == nil || s.cfg.DedupeTTL <= 0 {
		return true
	}
	first, err := s.dedupe.CheckAndSet(ctx, id, s.cfg.DedupeTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("notification_id", id).Msg("notifications: dedupe check failed")
		return true
	}
	return first
}

// dispatch forwards a stock-location change on its own goroutine. The
// request context is not used: the webhook is answered before it finishes.
func (s *NotificationService) dispatch(n *domain.Notification) {
	if s.dispatcher == nil {
		return
	}
	userProductID, ok := n.UserProductID()
	if !ok {
		s.log.Warn().Str("resource", n.Resource).Msg("notifications: stock resource has no user product id")
		s.countDispatch("skipped")
		return
	}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.DispatchTimeout)
		defer cancel()

		log := s.log.With().Str("notification_id", n.ID).Str("user_product_id", userProductID).Logger()
		err := s.dispatcher.Dispatch(ctx, n, userProductID)
		switch {
		case errors.Is(err, ports.ErrDispatchSkipped):
			log.Warn().Msg("notifications: inventory dispatch skipped")
			s.countDispatch("skipped")
		case err != nil:
			log.Error().Err(err).Msg("notifications: inventory dispatch failed")
			s.countDispatch("error")
		default:
			log.Info().Msg("notifications: inventory dispatched")
			s.countDispatch("success")
		}
	}()
}

// Wait blocks until every in-flight dispatch has finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

func (s *NotificationService) count(topic, result string) {
	if s.metrics != nil {
		s.metrics.NotificationsReceived.WithLabelValues(topic, result).Inc()
	}
}

func (s *NotificationService) countDispatch(result string) {
	if s.metrics != nil {
		s.metrics.InventoryDispatch.WithLabelValues(result).Inc()
	}
}
