package entity

import "time"

// Side is the direction of a position.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// CloseReason labels why a position was closed. The values are part of the
// trade history format and match the labels shown to users.
type CloseReason string

const (
	CloseReasonManual     CloseReason = "CLOSED"
	CloseReasonTakeProfit CloseReason = "Take Profit Hit"
	CloseReasonStopLoss   CloseReason = "Stop Loss Hit"
	CloseReasonLiquidated CloseReason = "LIQUIDATED"
)

// Position is an open simulated futures position. Quantity is derived from
// the notional size (margin * leverage) at the entry price, and the
// liquidation price is fixed at open time.
type Position struct {
	ID               int64      `json:"id"`
	Symbol           string     `json:"symbol"`
	Side             Side       `json:"side"`
	EntryPrice       float64    `json:"entry_price"`
	Quantity         float64    `json:"quantity"`
	Margin           float64    `json:"margin"`
	Leverage         int        `json:"leverage"`
	LiquidationPrice float64    `json:"liquidation_price"`
	TakeProfit       *float64   `json:"take_profit,omitempty"`
	StopLoss         *float64   `json:"stop_loss,omitempty"`
	OpenTime         time.Time  `json:"open_time"`
	OpenCommission   float64    `json:"open_commission"`
}

// NotionalSize returns margin * leverage.
func (p *Position) NotionalSize() float64 {
	return p.Margin * float64(p.Leverage)
}
