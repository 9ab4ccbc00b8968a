package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	redisStore "meli-reconciler/internal/adapter/storage/redis"
	"meli-reconciler/internal/core/domain"
	"meli-reconciler/internal/core/ports"
	"meli-reconciler/internal/core/ports/mocks"
	"meli-reconciler/internal/metrics"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerMocks struct {
	notifications *mocks.MockNotificationService
	reconciler    *mocks.MockReconcilerService
	costs         *mocks.MockCostService
	jobs          *mocks.MockJobService
	audit         *mocks.MockAuditService
}

func setupTestRouter(t *testing.T, store *redisStore.RateLimitStore, webhookLimit int64) (http.Handler, *routerMocks) {
	ctrl := gomock.NewController(t)
	m := &routerMocks{
		notifications: mocks.NewMockNotificationService(ctrl),
		reconciler:    mocks.NewMockReconcilerService(ctrl),
		costs:         mocks.NewMockCostService(ctrl),
		jobs:          mocks.NewMockJobService(ctrl),
		audit:         mocks.NewMockAuditService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		NotificationSvc:  m.notifications,
		ReconcilerSvc:    m.reconciler,
		CostSvc:          m.costs,
		JobSvc:           m.jobs,
		RateLimitStore:   store,
		WebhookRateLimit: webhookLimit,
		HealthCheckers:   []ports.HealthChecker{fakeChecker{name: "postgresql"}},
		MetricsHandler:   metrics.New().Handler(),
		AuditSvc:         m.audit,
		Logger:           zerolog.Nop(),
	})
	return r, m
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r, _ := setupTestRouter(t, nil, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestRouter_JobRunIsAudited(t *testing.T) {
	r, m := setupTestRouter(t, nil, 0)

	m.jobs.EXPECT().Run(gomock.Any(), domain.JobShippingBackfill, ports.JobParams{}).
		Return(&domain.JobReport{Job: domain.JobShippingBackfill}, nil)
	m.audit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ context.Context, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionRunJob, entry.Action)
		assert.Equal(t, "shipping-backfill", entry.ResourceID)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/jobs/shipping-backfill", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WebhookRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	r, m := setupTestRouter(t, redisStore.NewRateLimitStore(client), 2)
	m.notifications.EXPECT().Receive(gomock.Any(), gomock.Any()).
		Return(&domain.Notification{ID: "n", Topic: domain.TopicOrders}, nil).Times(2)

	send := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/meliNotifications",
			bytes.NewBufferString(`{"resource":"/orders/1","topic":"orders_v2"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRouter_CoverageNotAudited(t *testing.T) {
	r, m := setupTestRouter(t, nil, 0)

	m.jobs.EXPECT().CostCoverage(gomock.Any()).Return(&domain.CostCoverage{Since: time.Now(), CompletePercent: 100}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/cost-coverage", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := setupTestRouter(t, nil, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
