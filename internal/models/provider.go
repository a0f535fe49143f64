package models

// Provider is a market-data API the dashboard can pull from.
type Provider struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Enabled   bool       `json:"enabled"`
	BaseURL   string     `json:"baseUrl"`
	APIKey    string     `json:"apiKey"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is a named path template appended to the provider's base URL.
// Placeholders are written {name}; {apiKey} is filled last.
type Endpoint struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
