package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/persistence"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// Runs against a disposable database: POSTGRES_TEST_DSN=postgres://... go test ./internal/service/
func TestPostgresSignUpRace(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))

	f := newFixtureWithStore(t, repository.NewPostgresStore(pool))
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 5)

	const volunteers = 30
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
		full      int
	)
	for i := 0; i < volunteers; i++ {
		vol := f.volunteer(t, "racer")
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.signUps.SignUp(ctx, vol, opp.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				confirmed++
			case apperrors.HasCode(err, apperrors.CodeFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, confirmed)
	assert.Equal(t, volunteers-5, full)

	stored, err := f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.FilledSlots)
	signUps, err := f.store.Repos().SignUps.ListByOpportunity(ctx, opp.ID)
	require.NoError(t, err)
	assert.Len(t, signUps, 5)
}
