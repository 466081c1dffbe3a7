package entity

import "time"

// Trade is the immutable record of a closed position.
type Trade struct {
	PositionID       int64       `json:"position_id"`
	Symbol           string      `json:"symbol"`
	Side             Side        `json:"side"`
	EntryPrice       float64     `json:"entry_price"`
	ExitPrice        float64     `json:"exit_price"`
	Quantity         float64     `json:"quantity"`
	Margin           float64     `json:"margin"`
	Leverage         int         `json:"leverage"`
	LiquidationPrice float64     `json:"liquidation_price"`
	OpenTime         time.Time   `json:"open_time"`
	CloseTime        time.Time   `json:"close_time"`
	PnL              float64     `json:"pnl"`
	ROI              float64     `json:"roi"`
	Status           CloseReason `json:"status"`
}

// Stats holds running aggregates over an account's closed trades. Profit and
// loss are kept as separate signed accumulators, not netted.
type Stats struct {
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	TotalProfit     float64 `json:"total_profit"`
	TotalLoss       float64 `json:"total_loss"`
	BestTrade       float64 `json:"best_trade"`
	WorstTrade      float64 `json:"worst_trade"`
	TotalCommission float64 `json:"total_commission"`
}

// Settings holds per-account preferences.
type Settings struct {
	AutoTP        bool    `json:"auto_tp"`
	AutoSL        bool    `json:"auto_sl"`
	DefaultTP     float64 `json:"default_tp"`
	DefaultSL     float64 `json:"default_sl"`
	Notifications bool    `json:"notifications"`
}
