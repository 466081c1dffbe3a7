package telegram

import (
	"errors"
	"strconv"
	"strings"

	"golang-futures-bot/internal/entity"
)

// IntentKind tags the parsed chat intents. Commands are matched exhaustively
// on this tag rather than dispatched off raw strings.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentStart
	IntentPortfolio
	IntentPrice
	IntentMarkets
	IntentOpen
	IntentPositions
	IntentClose
	IntentSetTakeProfit
	IntentSetStopLoss
	IntentHistory
	IntentNotify
)

// Intent is a tagged variant of a user command with its arguments.
type Intent struct {
	Kind       IntentKind
	Symbol     string
	Side       entity.Side
	Margin     float64
	Leverage   int
	PositionID int64
	Price      float64
	Enabled    bool
}

func usageError(usage string) error {
	return errors.New("Usage: " + usage)
}

// ParseIntent parses a chat message into an Intent. The returned error
// carries a user-facing usage hint.
func ParseIntent(text string) (Intent, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Intent{Kind: IntentUnknown}, nil
	}

	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	// Strip a @botname suffix used in group chats.
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	args := fields[1:]

	switch command {
	case "start", "menu":
		return Intent{Kind: IntentStart}, nil
	case "balance", "portfolio":
		return Intent{Kind: IntentPortfolio}, nil
	case "price":
		if len(args) != 1 {
			return Intent{}, usageError("/price <symbol>")
		}
		return Intent{Kind: IntentPrice, Symbol: args[0]}, nil
	case "markets":
		return Intent{Kind: IntentMarkets}, nil
	case "long", "short":
		side := entity.SideLong
		if command == "short" {
			side = entity.SideShort
		}
		if len(args) != 3 {
			return Intent{}, usageError("/" + command + " <symbol> <margin> <leverage>")
		}
		margin, err := strconv.ParseFloat(args[1], 64)
		if err != nil || margin <= 0 {
			return Intent{}, errors.New("Invalid margin. Please enter a positive number.")
		}
		leverage, err := strconv.Atoi(args[2])
		if err != nil {
			return Intent{}, errors.New("Invalid leverage. Please enter a whole number.")
		}
		return Intent{Kind: IntentOpen, Symbol: args[0], Side: side, Margin: margin, Leverage: leverage}, nil
	case "positions":
		return Intent{Kind: IntentPositions}, nil
	case "close":
		if len(args) != 1 {
			return Intent{}, usageError("/close <position-id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return Intent{}, errors.New("Invalid position ID.")
		}
		return Intent{Kind: IntentClose, PositionID: id}, nil
	case "tp", "sl":
		kind := IntentSetTakeProfit
		if command == "sl" {
			kind = IntentSetStopLoss
		}
		if len(args) != 2 {
			return Intent{}, usageError("/" + command + " <position-id> <price>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return Intent{}, errors.New("Invalid position ID.")
		}
		price, err := strconv.ParseFloat(args[1], 64)
		if err != nil || price <= 0 {
			return Intent{}, errors.New("Invalid price. Please enter a positive number.")
		}
		return Intent{Kind: kind, PositionID: id, Price: price}, nil
	case "history":
		return Intent{Kind: IntentHistory}, nil
	case "notify":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return Intent{}, usageError("/notify on|off")
		}
		return Intent{Kind: IntentNotify, Enabled: args[0] == "on"}, nil
	default:
		return Intent{Kind: IntentUnknown}, nil
	}
}
