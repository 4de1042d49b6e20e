package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T, maxRetries int) (*Queue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewQueue(client, maxRetries, nil), mr
}

func TestEnqueueDequeueEmail(t *testing.T) {
	q, _ := newTestQueue(t, 3)
	ctx := context.Background()

	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{
		Kind:           "signup_confirmation",
		RecipientEmail: "ana@example.com",
		Subject:        "You're signed up",
		Body:           "See you there",
	}))
	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, JobTypeEmail, job.Type)
	assert.Zero(t, job.Attempt)

	payload, err := job.Email()
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", payload.RecipientEmail)
	assert.Equal(t, "signup_confirmation", payload.Kind)
}

func TestRetryDeadLettersAfterLimit(t *testing.T) {
	q, _ := newTestQueue(t, 2)
	ctx := context.Background()

	require.NoError(t, q.EnqueueEmail(ctx, EmailPayload{Kind: "k", RecipientEmail: "a@b.c"}))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)

	dead, err := q.Retry(ctx, job)
	require.NoError(t, err)
	assert.False(t, dead)

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 1, job.Attempt)

	dead, err = q.Retry(ctx, job)
	require.NoError(t, err)
	assert.True(t, dead)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	letters, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, job.ID, letters[0].ID)
	assert.Equal(t, 2, letters[0].Attempt)
}

func TestDequeueSkipsGarbage(t *testing.T) {
	q, mr := newTestQueue(t, 3)
	_, err := mr.RPush(QueueEmails, "not-json")
	require.NoError(t, err)

	job, err := q.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestEmailRejectsUnknownType(t *testing.T) {
	job := &Job{Type: "analytics"}
	_, err := job.Email()
	assert.Error(t, err)
}
