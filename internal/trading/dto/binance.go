package dto

// PriceQuote is the current price for a symbol.
type PriceQuote struct {
	Symbol string
	Price  float64
}

// MarketDetails is the 24h market summary for a symbol.
type MarketDetails struct {
	Symbol             string
	Price              float64
	PriceChange        float64
	PriceChangePercent float64
	HighPrice          float64
	LowPrice           float64
	Volume             float64
	QuoteVolume        float64
}

// MarketMover is one entry of the top-volume market list.
type MarketMover struct {
	Symbol             string
	PriceChangePercent float64
	QuoteVolume        float64
}

// TickerPriceResponse is the raw /fapi/v1/ticker/price payload.
type TickerPriceResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Ticker24hResponse is the raw /fapi/v1/ticker/24hr payload.
type Ticker24hResponse struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
}
