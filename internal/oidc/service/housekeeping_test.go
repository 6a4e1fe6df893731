package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweepsOnStart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	stale := issueTestCode(t, h, "alice")
	h.clock.Advance(DefaultCodeTTL + 2*time.Second)
	live := issueTestCode(t, h, "carol")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hk := NewHousekeepingService(h.codes, logger, time.Hour, 0)
	hk.Start()
	hk.Stop()

	_, err := h.codes.Redeem(ctx, stale)
	require.ErrorIs(t, err, ErrInvalidGrant)
	require.NotErrorIs(t, err, ErrCodeExpired)

	_, err = h.codes.Redeem(ctx, live)
	require.NoError(t, err)
}

func TestHousekeepingDefaults(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hk := NewHousekeepingService(&CodeService{}, logger, 0, -1)
	require.Equal(t, time.Minute, hk.Interval)
	require.Equal(t, DefaultCodeGracePeriod, hk.Grace)
}
