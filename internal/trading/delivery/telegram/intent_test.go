package telegram

import (
	"testing"

	"golang-futures-bot/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"start", "/start", Intent{Kind: IntentStart}},
		{"menu alias", "/menu", Intent{Kind: IntentStart}},
		{"balance", "/balance", Intent{Kind: IntentPortfolio}},
		{"price", "/price btc", Intent{Kind: IntentPrice, Symbol: "btc"}},
		{"markets", "/markets", Intent{Kind: IntentMarkets}},
		{
			"long",
			"/long btc 100 10",
			Intent{Kind: IntentOpen, Symbol: "btc", Side: entity.SideLong, Margin: 100, Leverage: 10},
		},
		{
			"short",
			"/short ethusdt 250.5 25",
			Intent{Kind: IntentOpen, Symbol: "ethusdt", Side: entity.SideShort, Margin: 250.5, Leverage: 25},
		},
		{"positions", "/positions", Intent{Kind: IntentPositions}},
		{"close", "/close 1700000000000", Intent{Kind: IntentClose, PositionID: 1700000000000}},
		{"tp", "/tp 17 51000", Intent{Kind: IntentSetTakeProfit, PositionID: 17, Price: 51000}},
		{"sl", "/sl 17 49000.5", Intent{Kind: IntentSetStopLoss, PositionID: 17, Price: 49000.5}},
		{"history", "/history", Intent{Kind: IntentHistory}},
		{"notify on", "/notify on", Intent{Kind: IntentNotify, Enabled: true}},
		{"notify off", "/notify off", Intent{Kind: IntentNotify, Enabled: false}},
		{"bot suffix stripped", "/price@futures_bot btc", Intent{Kind: IntentPrice, Symbol: "btc"}},
		{"unknown command", "/frobnicate", Intent{Kind: IntentUnknown}},
		{"plain chatter", "hello there", Intent{Kind: IntentUnknown}},
		{"empty", "   ", Intent{Kind: IntentUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIntent(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntent_UsageErrors(t *testing.T) {
	for _, text := range []string{
		"/price",
		"/price btc eth",
		"/long btc 100",
		"/long btc -5 10",
		"/long btc 100 ten",
		"/close",
		"/close abc",
		"/tp 17",
		"/tp 17 -3",
		"/notify maybe",
	} {
		_, err := ParseIntent(text)
		assert.Error(t, err, "expected error for %q", text)
	}
}
