package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestAuthService_SweepExpiredSessions(t *testing.T) {
	f := newAuthFixture(t)
	f.mock.ExpectExec(`DELETE FROM medportal\.sessions WHERE expires_at <= NOW\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))
	f.mock.ExpectExec(`DELETE FROM medportal\.sessions WHERE expires_at`).
		WillReturnError(errors.New("read only transaction"))

	removed, err := f.svc.SweepExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)

	_, err = f.svc.SweepExpiredSessions(context.Background())
	require.Error(t, err)

	assert.InDelta(t, 4, testutil.ToFloat64(f.metrics.SessionsSwept), 0)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAuthService_StartSessionSweeperStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := newAuthFixture(t)
	f.mock.ExpectExec(`DELETE FROM medportal\.sessions WHERE expires_at`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.svc.StartSessionSweeper(ctx, 5*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(f.metrics.SessionsSwept) == 3
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
