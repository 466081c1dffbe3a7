package service

import (
	"context"
	"sync"
	"testing"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/trading/dto"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBinanceRepository struct {
	prices map[string]float64
	err    error
}

func (f *fakeBinanceRepository) GetPrice(_ context.Context, symbol string) (*dto.PriceQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.PriceQuote{Symbol: symbol, Price: f.prices[symbol]}, nil
}

func (f *fakeBinanceRepository) GetDetails(context.Context, string) (*dto.MarketDetails, error) {
	return nil, nil
}

func (f *fakeBinanceRepository) GetTopMovers(context.Context, int) ([]dto.MarketMover, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	chatIDs  []int64
}

func (f *fakeNotifier) SendMessage(string) error { return nil }

func (f *fakeNotifier) SendMessageUser(text string, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	f.chatIDs = append(f.chatIDs, chatID)
	return nil
}

func (f *fakeNotifier) SendMessageTo(string, string) error { return nil }

func TestEvaluateClose(t *testing.T) {
	base := entity.Position{
		Side:             entity.SideLong,
		EntryPrice:       50000,
		LiquidationPrice: 45200, // 10x long
	}

	tests := []struct {
		name       string
		mutate     func(*entity.Position)
		price      float64
		wantClose  bool
		wantReason entity.CloseReason
	}{
		{
			name:      "no conditions configured, price in range",
			mutate:    func(*entity.Position) {},
			price:     50500,
			wantClose: false,
		},
		{
			name: "take profit hit on long",
			mutate: func(p *entity.Position) {
				p.TakeProfit = utils.ToPointer(51000.0)
			},
			price:      52000,
			wantClose:  true,
			wantReason: entity.CloseReasonTakeProfit,
		},
		{
			name: "stop loss hit on long",
			mutate: func(p *entity.Position) {
				p.StopLoss = utils.ToPointer(49000.0)
			},
			price:      48000,
			wantClose:  true,
			wantReason: entity.CloseReasonStopLoss,
		},
		{
			name: "liquidation overrides stop loss",
			mutate: func(p *entity.Position) {
				p.StopLoss = utils.ToPointer(49000.0)
			},
			price:      45000,
			wantClose:  true,
			wantReason: entity.CloseReasonLiquidated,
		},
		{
			name: "take profit wins when only tp and sl configured",
			mutate: func(p *entity.Position) {
				p.TakeProfit = utils.ToPointer(51000.0)
				p.StopLoss = utils.ToPointer(49000.0)
			},
			price:      52000,
			wantClose:  true,
			wantReason: entity.CloseReasonTakeProfit,
		},
		{
			name: "short take profit below entry",
			mutate: func(p *entity.Position) {
				p.Side = entity.SideShort
				p.LiquidationPrice = 54800
				p.TakeProfit = utils.ToPointer(49000.0)
			},
			price:      48500,
			wantClose:  true,
			wantReason: entity.CloseReasonTakeProfit,
		},
		{
			name: "short liquidation above entry",
			mutate: func(p *entity.Position) {
				p.Side = entity.SideShort
				p.LiquidationPrice = 54800
			},
			price:      55000,
			wantClose:  true,
			wantReason: entity.CloseReasonLiquidated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			reason, shouldClose := EvaluateClose(&p, tt.price)
			assert.Equal(t, tt.wantClose, shouldClose)
			if tt.wantClose {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}

func TestSweep_ClosesTriggeredPositionsAndNotifies(t *testing.T) {
	svc, accounts := newTestAccounting(t)
	ctx := context.Background()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	p, err := svc.OpenPosition(ctx, testChatID, "BTCUSDT", entity.SideLong, 100, 10, 50000)
	require.NoError(t, err)
	require.NoError(t, svc.SetTakeProfit(ctx, testChatID, p.ID, 51000))

	binance := &fakeBinanceRepository{prices: map[string]float64{"BTCUSDT": 52000}}
	notifier := &fakeNotifier{}
	monitor := NewAutoCloseMonitor(accounts, binance, svc, notifier, log, "10s")

	monitor.Sweep(ctx)

	_ = accounts.View(ctx, testChatID, func(acc *entity.Account) {
		assert.Empty(t, acc.Positions)
		require.Len(t, acc.TradeHistory, 1)
		assert.Equal(t, entity.CloseReasonTakeProfit, acc.TradeHistory[0].Status)
	})
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, testChatID, notifier.chatIDs[0])
	assert.Contains(t, notifier.messages[0], "TAKE PROFIT HIT")
}

func TestSweep_LiquidationOverridesStopLossLabel(t *testing.T) {
	svc, accounts := newTestAccounting(t)
	ctx := context.Background()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	p, err := svc.OpenPosition(ctx, testChatID, "BTCUSDT", entity.SideLong, 100, 10, 50000)
	require.NoError(t, err)
	// Stop loss set below the liquidation price: both trigger at the sweep
	// price, and the liquidation check runs last.
	require.NoError(t, svc.SetStopLoss(ctx, testChatID, p.ID, 46000))

	binance := &fakeBinanceRepository{prices: map[string]float64{"BTCUSDT": 44000}}
	notifier := &fakeNotifier{}
	monitor := NewAutoCloseMonitor(accounts, binance, svc, notifier, log, "10s")

	monitor.Sweep(ctx)

	_ = accounts.View(ctx, testChatID, func(acc *entity.Account) {
		require.Len(t, acc.TradeHistory, 1)
		trade := acc.TradeHistory[0]
		assert.Equal(t, entity.CloseReasonLiquidated, trade.Status)
		assert.InDelta(t, -100.0, trade.PnL, 1e-12)
	})
}

func TestSweep_NotificationsDisabled(t *testing.T) {
	svc, accounts := newTestAccounting(t)
	ctx := context.Background()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	p, err := svc.OpenPosition(ctx, testChatID, "BTCUSDT", entity.SideLong, 100, 10, 50000)
	require.NoError(t, err)
	require.NoError(t, svc.SetTakeProfit(ctx, testChatID, p.ID, 51000))
	require.NoError(t, svc.SetNotifications(ctx, testChatID, false))

	binance := &fakeBinanceRepository{prices: map[string]float64{"BTCUSDT": 52000}}
	notifier := &fakeNotifier{}
	monitor := NewAutoCloseMonitor(accounts, binance, svc, notifier, log, "10s")

	monitor.Sweep(ctx)

	_ = accounts.View(ctx, testChatID, func(acc *entity.Account) {
		assert.Empty(t, acc.Positions)
	})
	assert.Empty(t, notifier.messages)
}

func TestSweep_PriceErrorSkipsPosition(t *testing.T) {
	svc, accounts := newTestAccounting(t)
	ctx := context.Background()
	log, err := logger.New("error", "json")
	require.NoError(t, err)

	p, err := svc.OpenPosition(ctx, testChatID, "BTCUSDT", entity.SideLong, 100, 10, 50000)
	require.NoError(t, err)
	require.NoError(t, svc.SetTakeProfit(ctx, testChatID, p.ID, 51000))

	binance := &fakeBinanceRepository{err: assert.AnError}
	notifier := &fakeNotifier{}
	monitor := NewAutoCloseMonitor(accounts, binance, svc, notifier, log, "10s")

	monitor.Sweep(ctx)

	_ = accounts.View(ctx, testChatID, func(acc *entity.Account) {
		assert.Len(t, acc.Positions, 1)
	})
}
