// Package dto defines data transfer objects for Flattrade API responses.
package dto

// UserDetailsResponse represents the session-validation response. The vendor
// answers with stat "Ok", with stat "Not_Ok" plus an emsg, or (on older API
// versions) with the bare JSON literal `true`; the client normalizes all
// three before this type reaches callers.
type UserDetailsResponse struct {
	Stat     string `json:"stat"`
	UserID   string `json:"uid,omitempty"`
	UserName string `json:"uname,omitempty"`
	Emsg     string `json:"emsg,omitempty"`
}

// QuoteResponse represents the GetQuotes response. All numeric fields arrive
// as strings.
type QuoteResponse struct {
	Stat          string `json:"stat"`
	Emsg          string `json:"emsg,omitempty"`
	Token         string `json:"token"`
	Symbol        string `json:"tsym"`
	LTP           string `json:"lp"`
	Open          string `json:"o"`
	High          string `json:"h"`
	Low           string `json:"l"`
	Volume        string `json:"v"`
	Change        string `json:"c"`
	ChangePercent string `json:"prctyp"`
}

// TimeSeriesEntry is one bar of the TPSeries response. The endpoint returns
// a bare JSON array of these on success and an error object on failure.
type TimeSeriesEntry struct {
	Stat   string `json:"stat"`
	Time   string `json:"time"` // "DD-MM-YYYY HH:MM:SS"
	Open   string `json:"into"`
	High   string `json:"inth"`
	Low    string `json:"intl"`
	Close  string `json:"intc"`
	Volume string `json:"v"`
}

// ErrorResponse is the generic failure object shared by all endpoints.
type ErrorResponse struct {
	Stat string `json:"stat"`
	Emsg string `json:"emsg"`
}

// SearchResponse represents the SearchScrip response.
type SearchResponse struct {
	Stat   string `json:"stat"`
	Emsg   string `json:"emsg,omitempty"`
	Values []struct {
		Exchange    string `json:"exch"`
		Token       string `json:"token"`
		Symbol      string `json:"tsym"`
		InstName    string `json:"instname"`
		CompanyName string `json:"cname"`
	} `json:"values"`
}
