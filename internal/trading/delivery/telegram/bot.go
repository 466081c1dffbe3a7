package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/trading/repository"
	"golang-futures-bot/internal/trading/service"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/telegram"
	"golang-futures-bot/pkg/utils"
)

const topMoversLimit = 15

// BotHandler consumes Telegram updates for the trading simulator.
type BotHandler struct {
	client     *telegram.Client
	accounts   repository.AccountRepository
	binance    repository.BinanceRepository
	accounting *service.AccountingService
	logger     *logger.Logger
}

// NewBotHandler creates the trading bot update handler.
func NewBotHandler(client *telegram.Client, accounts repository.AccountRepository, binance repository.BinanceRepository, accounting *service.AccountingService, log *logger.Logger) *BotHandler {
	return &BotHandler{
		client:     client,
		accounts:   accounts,
		binance:    binance,
		accounting: accounting,
		logger:     log,
	}
}

// Run polls for updates until the context is canceled.
func (h *BotHandler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := h.client.BotAPI().GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.client.BotAPI().StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	intent, err := ParseIntent(msg.Text)
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}

	switch intent.Kind {
	case IntentStart:
		h.handleStart(ctx, chatID, msg.From)
	case IntentPortfolio:
		h.handlePortfolio(ctx, chatID)
	case IntentPrice:
		h.handlePrice(ctx, chatID, intent.Symbol)
	case IntentMarkets:
		h.handleMarkets(ctx, chatID)
	case IntentOpen:
		h.handleOpen(ctx, chatID, intent)
	case IntentPositions:
		h.handlePositions(ctx, chatID)
	case IntentClose:
		h.handleClose(ctx, chatID, intent.PositionID)
	case IntentSetTakeProfit:
		h.handleSetTPSL(ctx, chatID, intent.PositionID, intent.Price, true)
	case IntentSetStopLoss:
		h.handleSetTPSL(ctx, chatID, intent.PositionID, intent.Price, false)
	case IntentHistory:
		h.handleHistory(ctx, chatID)
	case IntentNotify:
		h.handleNotify(ctx, chatID, intent.Enabled)
	case IntentUnknown:
		// Non-command chatter and unknown commands are ignored.
	}
}

func (h *BotHandler) reply(chatID int64, text string) {
	if err := h.client.SendMessageUser(text, chatID); err != nil {
		h.logger.Error("Failed to send reply", logger.ErrorField(err), logger.Field("chat_id", chatID))
	}
}

func (h *BotHandler) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	name := "Trader"
	if from != nil && from.FirstName != "" {
		name = from.FirstName
	}
	// Creates the account on first contact.
	_ = h.accounts.View(ctx, chatID, func(*entity.Account) {})

	h.reply(chatID, fmt.Sprintf(
		"🎯 *Futures Demo Trading*\n\nWelcome, *%s*!\n\n"+
			"/price <symbol> — current price\n"+
			"/markets — top volume pairs\n"+
			"/long <symbol> <margin> <leverage> — open long\n"+
			"/short <symbol> <margin> <leverage> — open short\n"+
			"/positions — open positions\n"+
			"/close <id> — close a position\n"+
			"/tp <id> <price>, /sl <id> <price> — set TP/SL\n"+
			"/balance — account overview\n"+
			"/history — recent trades\n"+
			"/notify on|off — auto-close alerts", name))
}

func (h *BotHandler) handlePortfolio(ctx context.Context, chatID int64) {
	var b strings.Builder
	_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) {
		b.WriteString("💼 *Portfolio*\n\n")
		b.WriteString(fmt.Sprintf("Balance: %s\n", utils.FormatNumber(acc.Balance, 2)))
		b.WriteString(fmt.Sprintf("Open Positions: %d\n", len(acc.Positions)))
		b.WriteString(fmt.Sprintf("Trades: %d (W %d / L %d)\n", acc.Stats.TotalTrades, acc.Stats.WinningTrades, acc.Stats.LosingTrades))
		b.WriteString(fmt.Sprintf("Total Profit: %s\n", utils.FormatNumber(acc.Stats.TotalProfit, 2)))
		b.WriteString(fmt.Sprintf("Total Loss: %s\n", utils.FormatNumber(acc.Stats.TotalLoss, 2)))
		b.WriteString(fmt.Sprintf("Best: %s / Worst: %s\n", utils.FormatNumber(acc.Stats.BestTrade, 2), utils.FormatNumber(acc.Stats.WorstTrade, 2)))
		b.WriteString(fmt.Sprintf("Commission Paid: %s", utils.FormatNumber(acc.Stats.TotalCommission, 2)))
	})
	h.reply(chatID, b.String())
}

func (h *BotHandler) handlePrice(ctx context.Context, chatID int64, symbol string) {
	details, err := h.binance.GetDetails(ctx, symbol)
	if err != nil {
		h.reply(chatID, fmt.Sprintf("❌ Invalid symbol: %s", repository.NormalizeSymbol(symbol)))
		return
	}

	h.reply(chatID, fmt.Sprintf(
		"📊 *%s*\n\nPrice: %s\n24h Change: %s%%\n24h High: %s\n24h Low: %s\nVolume: %s",
		details.Symbol,
		utils.FormatNumber(details.Price, 4),
		utils.FormatNumber(details.PriceChangePercent, 2),
		utils.FormatNumber(details.HighPrice, 4),
		utils.FormatNumber(details.LowPrice, 4),
		utils.FormatVolume(details.QuoteVolume)))
}

func (h *BotHandler) handleMarkets(ctx context.Context, chatID int64) {
	movers, err := h.binance.GetTopMovers(ctx, topMoversLimit)
	if err != nil {
		h.reply(chatID, "❌ Failed to fetch markets. Please try again.")
		return
	}

	var b strings.Builder
	b.WriteString("🪙 *Top Markets by Volume*\n\n")
	for i, m := range movers {
		arrow := "🟢"
		if m.PriceChangePercent < 0 {
			arrow = "🔴"
		}
		b.WriteString(fmt.Sprintf("%d. %s %s %s%% (%s)\n",
			i+1, arrow, m.Symbol,
			utils.FormatNumber(m.PriceChangePercent, 2),
			utils.FormatVolume(m.QuoteVolume)))
	}
	h.reply(chatID, b.String())
}

func (h *BotHandler) handleOpen(ctx context.Context, chatID int64, intent Intent) {
	quote, err := h.binance.GetPrice(ctx, intent.Symbol)
	if err != nil {
		h.reply(chatID, fmt.Sprintf("❌ Invalid symbol: %s", repository.NormalizeSymbol(intent.Symbol)))
		return
	}

	position, err := h.accounting.OpenPosition(ctx, chatID, quote.Symbol, intent.Side, intent.Margin, intent.Leverage, quote.Price)
	if err != nil {
		h.reply(chatID, "❌ "+openErrorText(ctx, err, h, chatID, intent.Margin))
		return
	}

	h.reply(chatID, fmt.Sprintf(
		"%s *Position Opened*\n\n*%s* %s %dx\nID: `%d`\nEntry: %s\nSize: %s\nMargin: %s\nLiquidation: %s\n\n💡 Set /tp and /sl to manage risk.",
		sideEmoji(position.Side), position.Symbol, position.Side, position.Leverage,
		position.ID,
		utils.FormatNumber(position.EntryPrice, 4),
		utils.FormatNumber(position.NotionalSize(), 2),
		utils.FormatNumber(position.Margin, 2),
		utils.FormatNumber(position.LiquidationPrice, 4)))
}

func openErrorText(ctx context.Context, err error, h *BotHandler, chatID int64, margin float64) string {
	switch err {
	case service.ErrInsufficientBalance:
		var balance float64
		_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) { balance = acc.Balance })
		return fmt.Sprintf("Insufficient balance.\nRequired: %s\nAvailable: %s",
			utils.FormatNumber(margin, 2), utils.FormatNumber(balance, 2))
	case service.ErrInvalidLeverage:
		return fmt.Sprintf("Leverage must be between %d and %d.", service.MinLeverage, service.MaxLeverage)
	case service.ErrInvalidMargin:
		return "Margin must be a positive amount."
	default:
		return "Failed to open position. Please try again."
	}
}

func (h *BotHandler) handlePositions(ctx context.Context, chatID int64) {
	var positions []entity.Position
	_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) {
		for _, p := range acc.Positions {
			positions = append(positions, *p)
		}
	})

	if len(positions) == 0 {
		h.reply(chatID, "📊 No open positions.")
		return
	}

	var b strings.Builder
	b.WriteString("📊 *Open Positions*\n\n")
	for _, p := range positions {
		b.WriteString(fmt.Sprintf("%s *%s* %s ⚡%dx\n", sideEmoji(p.Side), p.Symbol, p.Side, p.Leverage))
		b.WriteString(fmt.Sprintf("ID: `%d`\n", p.ID))
		b.WriteString(fmt.Sprintf("Entry: %s | Margin: %s\n", utils.FormatNumber(p.EntryPrice, 4), utils.FormatNumber(p.Margin, 2)))
		if quote, err := h.binance.GetPrice(ctx, p.Symbol); err == nil {
			pnl, roi := service.CalculatePnL(&p, quote.Price)
			sign := ""
			if pnl >= 0 {
				sign = "+"
			}
			b.WriteString(fmt.Sprintf("P&L: %s%s (%s%s%%)\n", sign, utils.FormatNumber(pnl, 2), sign, utils.FormatNumber(roi, 2)))
		}
		if p.TakeProfit != nil {
			b.WriteString(fmt.Sprintf("🎯 TP: %s\n", utils.FormatNumber(*p.TakeProfit, 4)))
		}
		if p.StopLoss != nil {
			b.WriteString(fmt.Sprintf("🛑 SL: %s\n", utils.FormatNumber(*p.StopLoss, 4)))
		}
		b.WriteString(fmt.Sprintf("⚠️ Liq: %s\n\n", utils.FormatNumber(p.LiquidationPrice, 4)))
	}
	h.reply(chatID, b.String())
}

func (h *BotHandler) handleClose(ctx context.Context, chatID int64, positionID int64) {
	var symbol string
	_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) {
		if p := acc.FindPosition(positionID); p != nil {
			symbol = p.Symbol
		}
	})
	if symbol == "" {
		h.reply(chatID, "❌ Position not found.")
		return
	}

	quote, err := h.binance.GetPrice(ctx, symbol)
	if err != nil {
		h.reply(chatID, "❌ Failed to fetch current price. Please try again.")
		return
	}

	trade, err := h.accounting.ClosePosition(ctx, chatID, positionID, quote.Price, entity.CloseReasonManual)
	if err != nil {
		h.reply(chatID, "❌ Position not found.")
		return
	}

	var balance float64
	_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) { balance = acc.Balance })

	sign := ""
	if trade.PnL >= 0 {
		sign = "+"
	}
	emoji := "🟢"
	if trade.PnL < 0 {
		emoji = "🔴"
	}
	h.reply(chatID, fmt.Sprintf(
		"%s *Position Closed*\n\n*%s* %s\nNet P&L: *%s%s* (%s%s%%)\nEntry: %s\nExit: %s\nDuration: %s\n\n💼 New Balance: %s",
		emoji, trade.Symbol, trade.Side,
		sign, utils.FormatNumber(trade.PnL, 2), sign, utils.FormatNumber(trade.ROI, 2),
		utils.FormatNumber(trade.EntryPrice, 4),
		utils.FormatNumber(trade.ExitPrice, 4),
		utils.FormatDuration(trade.CloseTime.Sub(trade.OpenTime)),
		utils.FormatNumber(balance, 2)))
}

func (h *BotHandler) handleSetTPSL(ctx context.Context, chatID int64, positionID int64, price float64, takeProfit bool) {
	var err error
	if takeProfit {
		err = h.accounting.SetTakeProfit(ctx, chatID, positionID, price)
	} else {
		err = h.accounting.SetStopLoss(ctx, chatID, positionID, price)
	}
	if err != nil {
		h.reply(chatID, "❌ Position not found.")
		return
	}
	label := "Take Profit"
	if !takeProfit {
		label = "Stop Loss"
	}
	h.reply(chatID, fmt.Sprintf("✅ %s set at %s", label, utils.FormatNumber(price, 4)))
}

func (h *BotHandler) handleHistory(ctx context.Context, chatID int64) {
	var trades []entity.Trade
	_ = h.accounts.View(ctx, chatID, func(acc *entity.Account) {
		trades = append(trades, acc.TradeHistory...)
	})

	if len(trades) == 0 {
		h.reply(chatID, "📜 No trades yet.")
		return
	}

	const maxShown = 10
	start := 0
	if len(trades) > maxShown {
		start = len(trades) - maxShown
	}

	var b strings.Builder
	b.WriteString("📜 *Recent Trades*\n\n")
	for _, t := range trades[start:] {
		sign := ""
		if t.PnL >= 0 {
			sign = "+"
		}
		b.WriteString(fmt.Sprintf("%s *%s* %s %dx — %s%s (%s)\n",
			sideEmoji(t.Side), t.Symbol, t.Side, t.Leverage,
			sign, utils.FormatNumber(t.PnL, 2), t.Status))
	}
	h.reply(chatID, b.String())
}

func (h *BotHandler) handleNotify(ctx context.Context, chatID int64, enabled bool) {
	if err := h.accounting.SetNotifications(ctx, chatID, enabled); err != nil {
		h.reply(chatID, "❌ Failed to update settings.")
		return
	}
	if enabled {
		h.reply(chatID, "🔔 Auto-close notifications enabled.")
	} else {
		h.reply(chatID, "🔕 Auto-close notifications disabled.")
	}
}

func sideEmoji(side entity.Side) string {
	if side == entity.SideLong {
		return "🟢"
	}
	return "🔴"
}
