package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cms-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPSweeperDeletesExpired(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	store.codes["verificationCode.1"] = domain.OTPRecord{ID: "verificationCode.1", Code: "1111", ExpiresAt: now.Add(-time.Minute)}
	store.codes["verificationCode.2"] = domain.OTPRecord{ID: "verificationCode.2", Code: "2222", ExpiresAt: now.Add(time.Minute)}

	sweeper, err := NewOTPSweeper(store, "*/10 * * * *")
	require.NoError(t, err)

	n, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := store.code("verificationCode.1")
	assert.False(t, ok)
	_, ok = store.code("verificationCode.2")
	assert.True(t, ok)
}

func TestOTPSweeperComparesAsDateTime(t *testing.T) {
	store := newFakeStore()

	sweeper, err := NewOTPSweeper(store, "*/10 * * * *")
	require.NoError(t, err)

	_, err = sweeper.Sweep(context.Background())
	require.NoError(t, err)

	// expiresAt пишется как RFC3339Nano: строковое сравнение с now() без
	// dateTime() ошибается в пределах одной секунды
	require.Len(t, store.deletes, 1)
	assert.Contains(t, store.deletes[0], "dateTime(expiresAt)")
	assert.Contains(t, store.deletes[0], "dateTime(now())")

	raw, err := time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-01T10:00:00.5Z"`, string(raw))
}

func TestOTPSweeperInvalidSchedule(t *testing.T) {
	_, err := NewOTPSweeper(newFakeStore(), "every ten minutes")
	assert.Error(t, err)
}

func TestOTPSweeperStoreError(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("boom")

	sweeper, err := NewOTPSweeper(store, "@every 1h")
	require.NoError(t, err)
	sweeper.Start()
	defer sweeper.Stop()

	_, err = sweeper.Sweep(context.Background())
	assert.Error(t, err)
}
