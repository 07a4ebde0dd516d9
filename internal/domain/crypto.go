package domain

import "time"

// CryptoSnapshot is the canonical market view of one asset. Optional numeric
// fields are nil when the upstream provider did not report them.
type CryptoSnapshot struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Symbol            string   `json:"symbol"`
	Price             *float64 `json:"price,omitempty"`
	MarketCap         *float64 `json:"market_cap,omitempty"`
	Volume24h         *float64 `json:"volume_24h,omitempty"`
	PercentChange24h  *float64 `json:"percent_change_24h,omitempty"`
	Rank              int      `json:"rank,omitempty"`
	CirculatingSupply *float64 `json:"circulating_supply,omitempty"`
	TotalSupply       *float64 `json:"total_supply,omitempty"`
	MaxSupply         *float64 `json:"max_supply,omitempty"`
	Image             string   `json:"image,omitempty"`
	Source            string   `json:"source,omitempty"`
}

// CryptoDetails carries descriptive metadata for an asset.
type CryptoDetails struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	Description   string            `json:"description,omitempty"`
	MarketCapRank int               `json:"market_cap_rank,omitempty"`
	Homepage      string            `json:"homepage,omitempty"`
	Categories    []string          `json:"categories,omitempty"`
	GenesisDate   string            `json:"genesis_date,omitempty"`
	Links         map[string]string `json:"links,omitempty"`
	Source        string            `json:"source,omitempty"`
}

// IsEmpty reports whether the details carry nothing worth caching.
func (d *CryptoDetails) IsEmpty() bool {
	return d == nil || (d.ID == "" && d.Name == "" && d.Description == "")
}

type TeamMember struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Description string `json:"description,omitempty"`
}

type TeamData struct {
	Members     []TeamMember      `json:"team"`
	Description string            `json:"description,omitempty"`
	Website     string            `json:"website"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
	Source      string            `json:"source,omitempty"`
}

// IsEmpty reports whether no team information was found.
func (t *TeamData) IsEmpty() bool {
	return t == nil || (len(t.Members) == 0 && t.Description == "")
}

type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// TimeSeriesPoint is one observed price. Series are ordered ascending by
// Timestamp.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// AnalyticsResult holds metrics derived from a price series.
type AnalyticsResult struct {
	Volatility   float64 `json:"volatility"`
	Average7d    float64 `json:"average_7d"`
	Average30d   float64 `json:"average_30d"`
	PriceChange  float64 `json:"price_change"`
	HighLowRatio float64 `json:"high_low_ratio"`
	DataPoints   int     `json:"data_points"`
}

// AnalysisResponse is the aggregated result for one analysis request.
type AnalysisResponse struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Days        int               `json:"days"`
	Snapshot    *CryptoSnapshot   `json:"snapshot"`
	Details     *CryptoDetails    `json:"details,omitempty"`
	Team        *TeamData         `json:"team,omitempty"`
	News        []NewsItem        `json:"news"`
	ChartData   []TimeSeriesPoint `json:"chart_data"`
	Metrics     AnalyticsResult   `json:"metrics"`
	Context     string            `json:"context"`
	Analysis    map[string]string `json:"analysis,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
