// Package dto defines the JSON shapes for the instrument search endpoint.
package dto

// InstrumentItem is one resolved instrument in a search response.
type InstrumentItem struct {
	Kind     string `json:"kind"`
	ID       uint   `json:"id"`
	Symbol   string `json:"symbol"`
	Token    string `json:"token"`
	Exchange string `json:"exchange"`
	Name     string `json:"name"`
}

// SearchResponse is the envelope for the search endpoint.
type SearchResponse struct {
	Success bool             `json:"success"`
	Query   string           `json:"query"`
	Results []InstrumentItem `json:"results"`
	Error   string           `json:"error,omitempty"`
}
