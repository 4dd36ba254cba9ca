package usecase

import "strings"

// StaticIndex is one entry of the well-known index table.
type StaticIndex struct {
	Symbol string
	Token  string
	Name   string
}

// majorIndices is process-wide read-only configuration: the NIFTY-family
// indices whose vendor tokens are known to drift between API generations.
// For these symbols the table is authoritative over anything a live search
// returns. Never mutated after init.
var majorIndices = []StaticIndex{
	{Symbol: "NIFTY", Token: "26000", Name: "Nifty 50"},
	{Symbol: "NIFTY BANK", Token: "26009", Name: "Nifty Bank"},
	{Symbol: "NIFTY NEXT 50", Token: "26013", Name: "Nifty Next 50"},
	{Symbol: "NIFTY FIN SERVICE", Token: "26037", Name: "Nifty Financial Services"},
	{Symbol: "NIFTY MID SELECT", Token: "26074", Name: "Nifty Midcap Select"},
	{Symbol: "NIFTY IT", Token: "26008", Name: "Nifty IT"},
	{Symbol: "NIFTY AUTO", Token: "26029", Name: "Nifty Auto"},
	{Symbol: "NIFTY PHARMA", Token: "26023", Name: "Nifty Pharma"},
	{Symbol: "NIFTY FMCG", Token: "26021", Name: "Nifty FMCG"},
	{Symbol: "NIFTY METAL", Token: "26025", Name: "Nifty Metal"},
}

// matchStaticIndices returns the table entries whose symbol or name contains
// the query, case-insensitively. No network call is involved.
func matchStaticIndices(query string) []StaticIndex {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []StaticIndex
	for _, ix := range majorIndices {
		if strings.Contains(strings.ToLower(ix.Symbol), q) || strings.Contains(strings.ToLower(ix.Name), q) {
			out = append(out, ix)
		}
	}
	return out
}

// popularStocks is the seed list used to keep the dashboard from starting
// empty: ten liquid NSE symbols with their vendor tokens.
var popularStocks = []struct {
	Symbol string
	Token  string
}{
	{"RELIANCE-EQ", "2885"},
	{"TCS-EQ", "11536"},
	{"HDFCBANK-EQ", "1333"},
	{"ICICIBANK-EQ", "4963"},
	{"HINDUNILVR-EQ", "356"},
	{"INFY-EQ", "1594"},
	{"ITC-EQ", "424"},
	{"KOTAKBANK-EQ", "1922"},
	{"LT-EQ", "2939"},
	{"AXISBANK-EQ", "5900"},
}
