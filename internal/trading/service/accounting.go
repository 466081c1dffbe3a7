package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/trading/repository"
	"golang-futures-bot/pkg/logger"
)

const (
	// CommissionRate is charged on the notional size at open and again at close.
	CommissionRate = 0.0004
	// MaintenanceMarginRate shifts the liquidation price slightly toward entry.
	MaintenanceMarginRate = 0.004
	// MinLeverage and MaxLeverage bound accepted leverage values.
	MinLeverage = 1
	MaxLeverage = 125
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidMargin       = errors.New("margin must be positive")
	ErrInvalidLeverage     = errors.New("leverage out of range")
	ErrInvalidPrice        = errors.New("price must be positive")
	ErrPositionNotFound    = errors.New("position not found")
)

// CalculateLiquidationPrice returns the fixed liquidation price for a
// position opened at entryPrice with the given leverage. Higher leverage
// puts liquidation closer to entry.
func CalculateLiquidationPrice(entryPrice float64, leverage int, side entity.Side) float64 {
	if side == entity.SideLong {
		return entryPrice * (1 - 1/float64(leverage) + MaintenanceMarginRate)
	}
	return entryPrice * (1 + 1/float64(leverage) - MaintenanceMarginRate)
}

// CalculatePnL returns the gross PnL and ROI of a position at currentPrice.
//
// Quantity is notional/entry, so leverage is already embedded in it; the
// extra leverage factor below doubles it up. That matches the behavior this
// simulator has always had and is asserted by tests, so it must not be
// "fixed" in isolation.
func CalculatePnL(p *entity.Position, currentPrice float64) (pnl, roi float64) {
	priceDiff := currentPrice - p.EntryPrice
	direction := 1.0
	if p.Side == entity.SideShort {
		direction = -1.0
	}
	pnl = priceDiff * direction * p.Quantity * float64(p.Leverage)
	roi = pnl / p.Margin * 100
	return pnl, roi
}

// CalculateCommission returns the commission charged on a notional size.
func CalculateCommission(notionalSize float64) float64 {
	return notionalSize * CommissionRate
}

// AccountingService owns the position lifecycle: open, TP/SL updates, and
// close with stats bookkeeping. Every operation is a read-modify-write under
// the account store's per-account lock.
type AccountingService struct {
	accounts repository.AccountRepository
	logger   *logger.Logger

	idMu   sync.Mutex
	lastID int64
}

// NewAccountingService creates the accounting service.
func NewAccountingService(accounts repository.AccountRepository, log *logger.Logger) *AccountingService {
	return &AccountingService{
		accounts: accounts,
		logger:   log,
	}
}

// nextPositionID returns a unique, monotonically increasing, time-based ID.
func (s *AccountingService) nextPositionID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// OpenPosition opens a position at entryPrice, debiting the margin and the
// entry commission bookkeeping from the account.
func (s *AccountingService) OpenPosition(ctx context.Context, chatID int64, symbol string, side entity.Side, margin float64, leverage int, entryPrice float64) (*entity.Position, error) {
	if margin <= 0 {
		return nil, ErrInvalidMargin
	}
	if leverage < MinLeverage || leverage > MaxLeverage {
		return nil, ErrInvalidLeverage
	}
	if entryPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	var position *entity.Position
	err := s.accounts.Update(ctx, chatID, func(acc *entity.Account) error {
		if margin > acc.Balance {
			return ErrInsufficientBalance
		}

		notional := margin * float64(leverage)
		commission := CalculateCommission(notional)

		position = &entity.Position{
			ID:               s.nextPositionID(),
			Symbol:           symbol,
			Side:             side,
			EntryPrice:       entryPrice,
			Quantity:         notional / entryPrice,
			Margin:           margin,
			Leverage:         leverage,
			LiquidationPrice: CalculateLiquidationPrice(entryPrice, leverage, side),
			OpenTime:         time.Now(),
			OpenCommission:   commission,
		}

		acc.Balance -= margin
		acc.Stats.TotalCommission += commission
		acc.Positions = append(acc.Positions, position)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Position opened",
		logger.Field("chat_id", chatID),
		logger.StringField("symbol", position.Symbol),
		logger.StringField("side", string(position.Side)),
		logger.Float64Field("margin", position.Margin),
		logger.IntField("leverage", position.Leverage))
	return position, nil
}

// ClosePosition closes an open position at exitPrice with the given reason
// and returns the resulting trade record. A LIQUIDATED close forfeits the
// entire margin regardless of the computed PnL.
func (s *AccountingService) ClosePosition(ctx context.Context, chatID int64, positionID int64, exitPrice float64, reason entity.CloseReason) (*entity.Trade, error) {
	if exitPrice <= 0 {
		return nil, ErrInvalidPrice
	}

	var trade *entity.Trade
	err := s.accounts.Update(ctx, chatID, func(acc *entity.Account) error {
		position := acc.FindPosition(positionID)
		if position == nil {
			return ErrPositionNotFound
		}

		grossPnL, roi := CalculatePnL(position, exitPrice)
		closeCommission := CalculateCommission(position.NotionalSize())

		netPnL := grossPnL - closeCommission
		if reason == entity.CloseReasonLiquidated {
			netPnL = -position.Margin
		}

		acc.Balance += position.Margin + netPnL
		acc.Stats.TotalCommission += closeCommission
		acc.Stats.TotalTrades++

		if netPnL >= 0 {
			acc.Stats.WinningTrades++
			acc.Stats.TotalProfit += netPnL
			if netPnL > acc.Stats.BestTrade {
				acc.Stats.BestTrade = netPnL
			}
		} else {
			acc.Stats.LosingTrades++
			acc.Stats.TotalLoss += netPnL
			if netPnL < acc.Stats.WorstTrade {
				acc.Stats.WorstTrade = netPnL
			}
		}

		t := entity.Trade{
			PositionID:       position.ID,
			Symbol:           position.Symbol,
			Side:             position.Side,
			EntryPrice:       position.EntryPrice,
			ExitPrice:        exitPrice,
			Quantity:         position.Quantity,
			Margin:           position.Margin,
			Leverage:         position.Leverage,
			LiquidationPrice: position.LiquidationPrice,
			OpenTime:         position.OpenTime,
			CloseTime:        time.Now(),
			PnL:              netPnL,
			ROI:              roi,
			Status:           reason,
		}

		acc.RemovePosition(position.ID)
		acc.TradeHistory = append(acc.TradeHistory, t)
		trade = &t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Position closed",
		logger.Field("chat_id", chatID),
		logger.StringField("symbol", trade.Symbol),
		logger.StringField("status", string(trade.Status)),
		logger.Float64Field("pnl", trade.PnL))
	return trade, nil
}

// SetTakeProfit sets the take-profit price on an open position.
func (s *AccountingService) SetTakeProfit(ctx context.Context, chatID int64, positionID int64, price float64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return s.accounts.Update(ctx, chatID, func(acc *entity.Account) error {
		position := acc.FindPosition(positionID)
		if position == nil {
			return ErrPositionNotFound
		}
		position.TakeProfit = &price
		return nil
	})
}

// SetStopLoss sets the stop-loss price on an open position.
func (s *AccountingService) SetStopLoss(ctx context.Context, chatID int64, positionID int64, price float64) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return s.accounts.Update(ctx, chatID, func(acc *entity.Account) error {
		position := acc.FindPosition(positionID)
		if position == nil {
			return ErrPositionNotFound
		}
		position.StopLoss = &price
		return nil
	})
}

// SetNotifications toggles auto-close notifications for an account.
func (s *AccountingService) SetNotifications(ctx context.Context, chatID int64, enabled bool) error {
	return s.accounts.Update(ctx, chatID, func(acc *entity.Account) error {
		acc.Settings.Notifications = enabled
		return nil
	})
}
