package telegram

import (
	"fmt"
	"strings"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/pkg/utils"
)

// FormatAutoCloseAlert formats the notification sent when the monitor closes
// a position.
func FormatAutoCloseAlert(trade entity.Trade, balance float64) string {
	emoji := "🟢"
	if trade.Status == entity.CloseReasonLiquidated {
		emoji = "💥"
	} else if trade.PnL < 0 {
		emoji = "🔴"
	}

	sign := ""
	if trade.PnL >= 0 {
		sign = "+"
	}
	roiSign := ""
	if trade.ROI >= 0 {
		roiSign = "+"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s*\n\n", emoji, strings.ToUpper(string(trade.Status))))
	b.WriteString(fmt.Sprintf("*%s* %s %dx\n", trade.Symbol, trade.Side, trade.Leverage))
	b.WriteString(fmt.Sprintf("P&L: %s%s (%s%s%%)\n", sign, utils.FormatNumber(trade.PnL, 2), roiSign, utils.FormatNumber(trade.ROI, 2)))
	b.WriteString(fmt.Sprintf("Entry: %s\n", utils.FormatNumber(trade.EntryPrice, 4)))
	b.WriteString(fmt.Sprintf("Exit: %s\n\n", utils.FormatNumber(trade.ExitPrice, 4)))
	b.WriteString(fmt.Sprintf("💼 New Balance: %s", utils.FormatNumber(balance, 2)))
	return b.String()
}

// FormatSmsForward formats a forwarded SMS message. The OTP line is included
// only when extraction found a candidate code.
func FormatSmsForward(msg entity.SmsMessage, otp string) string {
	var b strings.Builder
	b.WriteString("📩 *New SMS*\n\n")
	b.WriteString(fmt.Sprintf("📞 From: %s\n", msg.Cli))
	b.WriteString(fmt.Sprintf("📱 To: %s\n", msg.Num))
	b.WriteString(fmt.Sprintf("🕐 Time: %s\n\n", msg.Dt))
	b.WriteString(msg.Message)
	if otp != "" {
		b.WriteString(fmt.Sprintf("\n\n🔑 Code: `%s`", otp))
	}
	return b.String()
}

// FormatConnectionNotice formats the one-shot connectivity transition notice.
func FormatConnectionNotice(connected bool) string {
	if connected {
		return "✅ SMS service reconnected."
	}
	return "⚠️ SMS service disconnected. Will keep retrying."
}
