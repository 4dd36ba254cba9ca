// Package dto defines the JSON shapes for the marketdata refresh endpoints.
package dto

// QuoteData is one quote snapshot as served to the dashboard's AJAX
// refresh.
type QuoteData struct {
	LTP           float64 `json:"ltp"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// CandleData is one OHLC bar as served to the dashboard.
type CandleData struct {
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume,omitempty"`
}

// QuoteResponse is the envelope for the quote refresh endpoint.
type QuoteResponse struct {
	Success bool       `json:"success"`
	Quote   *QuoteData `json:"quote,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// CandlesResponse is the envelope for the OHLC refresh endpoint. Data holds
// only the candles this request newly persisted.
type CandlesResponse struct {
	Success bool         `json:"success"`
	Data    []CandleData `json:"data,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// RefreshResponse is the envelope for the combined async refresh endpoint.
type RefreshResponse struct {
	Success    bool       `json:"success"`
	Quote      *QuoteData `json:"quote,omitempty"`
	NewCandles int        `json:"new_candles"`
	Error      string     `json:"error,omitempty"`
}
