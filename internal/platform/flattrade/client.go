package flattrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	instentity "stockdash/internal/feature/instruments/domain/entity"
	mdentity "stockdash/internal/feature/marketdata/domain/entity"
	sessentity "stockdash/internal/feature/session/domain/entity"
	"stockdash/internal/platform/flattrade/dto"
)

// ErrNotConnected is returned by all data calls until Authenticate succeeds.
// No network request is made in that case.
var ErrNotConnected = errors.New("flattrade: not connected, authenticate first")

// Client talks to the Flattrade (Noren) HTTP API. It holds the user id and
// daily token and a connected flag; data calls fail fast while disconnected.
type Client struct {
	cfg       Config
	client    *http.Client
	connected atomic.Bool
}

// NewClient creates a new Client with the given config and HTTP client.
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// Connected reports whether the last Authenticate call succeeded.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// UserID returns the configured vendor account id.
func (c *Client) UserID() string {
	return c.cfg.UserID
}

// Token returns the configured daily session token.
func (c *Client) Token() string {
	return c.cfg.Token
}

// post sends a Noren-style form body ("jData=<json>&jKey=<token>") and
// returns the raw response bytes.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	body := fmt.Sprintf("jData=%s&jKey=%s", jData, c.cfg.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("flattrade http %d on %s", res.StatusCode, path)
	}
	return io.ReadAll(res.Body)
}

// Authenticate validates the configured user id and daily token against the
// vendor and flips the connected flag accordingly.
func (c *Client) Authenticate(ctx context.Context) (sessentity.AuthResult, error) {
	raw, err := c.post(ctx, "/UserDetails", map[string]string{"uid": c.cfg.UserID})
	if err != nil {
		c.connected.Store(false)
		return sessentity.AuthResult{}, err
	}

	// Older vendor API versions answer a successful session check with the
	// bare JSON literal `true` instead of a status object.
	if bytes.Equal(bytes.TrimSpace(raw), []byte("true")) {
		c.connected.Store(true)
		return sessentity.AuthResult{OK: true, UserID: c.cfg.UserID}, nil
	}

	var body dto.UserDetailsResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		c.connected.Store(false)
		return sessentity.AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	if body.Stat != "Ok" {
		c.connected.Store(false)
		msg := body.Emsg
		if msg == "" {
			msg = "unknown error"
		}
		return sessentity.AuthResult{OK: false, Message: msg}, nil
	}

	c.connected.Store(true)
	uid := body.UserID
	if uid == "" {
		uid = c.cfg.UserID
	}
	return sessentity.AuthResult{OK: true, UserID: uid}, nil
}

// GetQuote fetches a live quote for the scrip identified by token. Missing
// numeric fields default to zero.
func (c *Client) GetQuote(ctx context.Context, exchange, token string) (*mdentity.VendorQuote, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	raw, err := c.post(ctx, "/GetQuotes", map[string]string{
		"uid":   c.cfg.UserID,
		"exch":  exchange,
		"token": token,
	})
	if err != nil {
		return nil, err
	}

	var body dto.QuoteResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if body.Stat != "Ok" {
		return nil, fmt.Errorf("flattrade quote: %s", body.Emsg)
	}

	return &mdentity.VendorQuote{
		Token:         body.Token,
		LTP:           parseFloat(body.LTP),
		Open:          parseFloat(body.Open),
		High:          parseFloat(body.High),
		Low:           parseFloat(body.Low),
		Volume:        parseInt(body.Volume),
		Change:        parseFloat(body.Change),
		ChangePercent: parseFloat(body.ChangePercent),
	}, nil
}

// GetTimePriceSeries fetches candles for a scrip from start to now at the
// given interval in minutes. The endpoint returns a bare JSON array on
// success and an error object otherwise.
func (c *Client) GetTimePriceSeries(ctx context.Context, exchange, token string, start time.Time, interval int) ([]mdentity.VendorCandle, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	raw, err := c.post(ctx, "/TPSeries", map[string]string{
		"uid":   c.cfg.UserID,
		"exch":  exchange,
		"token": token,
		"st":    strconv.FormatInt(start.Unix(), 10),
		"et":    strconv.FormatInt(time.Now().Unix(), 10),
		"intrv": strconv.Itoa(interval),
	})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		var body dto.ErrorResponse
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return nil, fmt.Errorf("decode time series response: %w", err)
		}
		return nil, fmt.Errorf("flattrade tpseries: %s", body.Emsg)
	}

	var entries []dto.TimeSeriesEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("decode time series response: %w", err)
	}

	candles := make([]mdentity.VendorCandle, 0, len(entries))
	for _, e := range entries {
		candles = append(candles, mdentity.VendorCandle{
			Time:   e.Time,
			Open:   parseFloat(e.Open),
			High:   parseFloat(e.High),
			Low:    parseFloat(e.Low),
			Close:  parseFloat(e.Close),
			Volume: parseInt(e.Volume),
		})
	}
	return candles, nil
}

// SearchScrip searches one exchange for scrips matching text. Results are
// tagged with the exchange the search ran against, since the vendor response
// does not disambiguate on its own.
func (c *Client) SearchScrip(ctx context.Context, exchange, text string) ([]instentity.SearchResult, error) {
	if !c.connected.Load() {
		return nil, ErrNotConnected
	}

	raw, err := c.post(ctx, "/SearchScrip", map[string]string{
		"uid":   c.cfg.UserID,
		"exch":  exchange,
		"stext": text,
	})
	if err != nil {
		return nil, err
	}

	var body dto.SearchResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if body.Stat != "Ok" {
		return nil, fmt.Errorf("flattrade search %s: %s", exchange, body.Emsg)
	}

	out := make([]instentity.SearchResult, 0, len(body.Values))
	for _, v := range body.Values {
		out = append(out, instentity.SearchResult{
			Symbol:      v.Symbol,
			Token:       v.Token,
			Exchange:    exchange,
			InstName:    v.InstName,
			CompanyName: v.CompanyName,
		})
	}
	return out, nil
}

// parseFloat converts a vendor numeric string, defaulting to zero on missing
// or malformed input.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
