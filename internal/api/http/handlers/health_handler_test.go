package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/volunteer-hub/internal/observability"
	"github.com/spec-kit/volunteer-hub/internal/queue"
)

func getMetrics(t *testing.T, h *HealthHandler) map[string]any {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", h.Metrics)
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestMetricsReportsEmailQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	q := queue.NewQueue(client, 1, nil)
	ctx := context.Background()

	require.NoError(t, q.EnqueueEmail(ctx, queue.EmailPayload{Kind: "signup_confirmation", RecipientEmail: "dead@example.com"}))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	dead, err := q.Retry(ctx, job)
	require.NoError(t, err)
	require.True(t, dead)
	require.NoError(t, q.EnqueueEmail(ctx, queue.EmailPayload{Kind: "email_verification", RecipientEmail: "live@example.com"}))

	metrics := observability.NewMetrics()
	metrics.RecordSignUp("confirmed")
	body := getMetrics(t, NewHealthHandler("hub", "test", metrics, nil).WithEmailQueue(q))

	assert.EqualValues(t, 1, body["signup_outcomes"].(map[string]any)["CONFIRMED"])
	stats := body["email_queue"].(map[string]any)
	assert.EqualValues(t, 1, stats["pending"])
	letters := stats["dead_letters"].([]any)
	require.Len(t, letters, 1)
	entry := letters[0].(map[string]any)
	assert.Equal(t, job.ID, entry["id"])
	assert.Equal(t, "signup_confirmation", entry["kind"])
	assert.Equal(t, "dead@example.com", entry["recipient"])
	assert.EqualValues(t, 1, entry["attempt"])
}

func TestMetricsWithoutEmailQueue(t *testing.T) {
	body := getMetrics(t, NewHealthHandler("hub", "test", observability.NewMetrics(), nil))
	assert.NotContains(t, body, "email_queue")
	assert.Contains(t, body, "requests")
}

func TestMetricsReportsQueueError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	body := getMetrics(t, NewHealthHandler("hub", "test", nil, nil).WithEmailQueue(queue.NewQueue(client, 3, nil)))
	stats := body["email_queue"].(map[string]any)
	assert.NotEmpty(t, stats["error"])
	assert.Empty(t, stats["dead_letters"])
}
