package service

import (
	"context"
	"errors"
	"fmt"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/trading/repository"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// EvaluateClose checks the auto-close conditions for a position at the given
// price and returns the winning close reason.
//
// The checks run in a fixed order with last-write-wins semantics: take
// profit, then stop loss, then liquidation. Liquidation is evaluated
// unconditionally and overrides an earlier TP/SL match. A stop-loss hit can
// therefore be relabeled LIQUIDATED within the same sweep; that ordering is
// load-bearing and pinned by tests.
func EvaluateClose(p *entity.Position, currentPrice float64) (entity.CloseReason, bool) {
	var reason entity.CloseReason
	shouldClose := false

	if p.TakeProfit != nil {
		if (p.Side == entity.SideLong && currentPrice >= *p.TakeProfit) ||
			(p.Side == entity.SideShort && currentPrice <= *p.TakeProfit) {
			shouldClose = true
			reason = entity.CloseReasonTakeProfit
		}
	}

	if p.StopLoss != nil {
		if (p.Side == entity.SideLong && currentPrice <= *p.StopLoss) ||
			(p.Side == entity.SideShort && currentPrice >= *p.StopLoss) {
			shouldClose = true
			reason = entity.CloseReasonStopLoss
		}
	}

	if (p.Side == entity.SideLong && currentPrice <= p.LiquidationPrice) ||
		(p.Side == entity.SideShort && currentPrice >= p.LiquidationPrice) {
		shouldClose = true
		reason = entity.CloseReasonLiquidated
	}

	return reason, shouldClose
}

// AutoCloseMonitor sweeps all open positions on a fixed interval and closes
// the ones whose TP, SL, or liquidation condition has triggered.
type AutoCloseMonitor struct {
	accounts   repository.AccountRepository
	binance    repository.BinanceRepository
	accounting *AccountingService
	notifier   telegram.Notifier
	logger     *logger.Logger
	interval   string
	cron       *cron.Cron
}

// NewAutoCloseMonitor creates the monitor. interval is a duration string
// such as "10s".
func NewAutoCloseMonitor(accounts repository.AccountRepository, binance repository.BinanceRepository, accounting *AccountingService, notifier telegram.Notifier, log *logger.Logger, interval string) *AutoCloseMonitor {
	return &AutoCloseMonitor{
		accounts:   accounts,
		binance:    binance,
		accounting: accounting,
		notifier:   notifier,
		logger:     log,
		interval:   interval,
	}
}

// Start schedules the sweep. Overlapping runs are skipped so two sweeps can
// never mutate the same account concurrently.
func (m *AutoCloseMonitor) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", m.interval), func() {
		m.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule auto-close sweep: %w", err)
	}
	c.Start()
	m.cron = c
	return nil
}

// Stop halts the sweep schedule and waits for a running sweep to finish.
func (m *AutoCloseMonitor) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
}

type positionSnapshot struct {
	chatID   int64
	position entity.Position
}

// Sweep evaluates every open position across all accounts once.
func (m *AutoCloseMonitor) Sweep(ctx context.Context) {
	var snapshots []positionSnapshot
	for _, chatID := range m.accounts.ChatIDs(ctx) {
		_ = m.accounts.View(ctx, chatID, func(acc *entity.Account) {
			for _, p := range acc.Positions {
				snapshots = append(snapshots, positionSnapshot{chatID: chatID, position: *p})
			}
		})
	}

	for _, snap := range snapshots {
		m.checkPosition(ctx, snap.chatID, snap.position)
	}
}

func (m *AutoCloseMonitor) checkPosition(ctx context.Context, chatID int64, position entity.Position) {
	quote, err := m.binance.GetPrice(ctx, position.Symbol)
	if err != nil {
		m.logger.Error("Auto-close price check failed",
			logger.ErrorField(err),
			logger.StringField("symbol", position.Symbol))
		return
	}

	reason, shouldClose := EvaluateClose(&position, quote.Price)
	if !shouldClose {
		return
	}

	trade, err := m.accounting.ClosePosition(ctx, chatID, position.ID, quote.Price, reason)
	if err != nil {
		// Closed manually between snapshot and now.
		if errors.Is(err, ErrPositionNotFound) {
			return
		}
		m.logger.Error("Auto-close failed",
			logger.ErrorField(err),
			logger.Field("chat_id", chatID),
			logger.Field("position_id", position.ID))
		return
	}

	var notify bool
	var balance float64
	_ = m.accounts.View(ctx, chatID, func(acc *entity.Account) {
		notify = acc.Settings.Notifications
		balance = acc.Balance
	})
	if !notify {
		return
	}

	if err := m.notifier.SendMessageUser(telegram.FormatAutoCloseAlert(*trade, balance), chatID); err != nil {
		m.logger.Error("Failed to send auto-close notification",
			logger.ErrorField(err),
			logger.Field("chat_id", chatID))
	}
}
