package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantum-receipt-gateway/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestLedgerProbe_Reachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockHealthChecker(ctrl)
	checker.EXPECT().Name().Return("ledger").AnyTimes()
	probe := NewLedgerProbe(checker, 20*time.Millisecond, zerolog.Nop())

	checker.EXPECT().Ping(gomock.Any()).Return(nil)
	assert.True(t, probe.Reachable(context.Background()))

	checker.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))
	assert.False(t, probe.Reachable(context.Background()))
}

func TestLedgerProbe_BoundedByTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := mocks.NewMockHealthChecker(ctrl)
	checker.EXPECT().Name().Return("ledger").AnyTimes()
	checker.EXPECT().Ping(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	probe := NewLedgerProbe(checker, 20*time.Millisecond, zerolog.Nop())
	start := time.Now()
	assert.False(t, probe.Reachable(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}
