package domain

import "strings"

// Asset ties a ticker symbol to the identifiers used by providers that key
// their endpoints by slug instead of symbol.
type Asset struct {
	Symbol        string
	Name          string
	CoinGeckoID   string
	CoinPaprikaID string
}

var registry = []Asset{
	{Symbol: "BTC", Name: "Bitcoin", CoinGeckoID: "bitcoin", CoinPaprikaID: "btc-bitcoin"},
	{Symbol: "ETH", Name: "Ethereum", CoinGeckoID: "ethereum", CoinPaprikaID: "eth-ethereum"},
	{Symbol: "SOL", Name: "Solana", CoinGeckoID: "solana", CoinPaprikaID: "sol-solana"},
	{Symbol: "XRP", Name: "XRP", CoinGeckoID: "ripple", CoinPaprikaID: "xrp-xrp"},
	{Symbol: "ADA", Name: "Cardano", CoinGeckoID: "cardano", CoinPaprikaID: "ada-cardano"},
	{Symbol: "DOGE", Name: "Dogecoin", CoinGeckoID: "dogecoin", CoinPaprikaID: "doge-dogecoin"},
	{Symbol: "DOT", Name: "Polkadot", CoinGeckoID: "polkadot", CoinPaprikaID: "dot-polkadot"},
	{Symbol: "AVAX", Name: "Avalanche", CoinGeckoID: "avalanche-2", CoinPaprikaID: "avax-avalanche"},
	{Symbol: "LINK", Name: "Chainlink", CoinGeckoID: "chainlink", CoinPaprikaID: "link-chainlink"},
	{Symbol: "MATIC", Name: "Polygon", CoinGeckoID: "matic-network", CoinPaprikaID: "matic-polygon"},
	{Symbol: "BNB", Name: "BNB", CoinGeckoID: "binancecoin", CoinPaprikaID: "bnb-binance-coin"},
	{Symbol: "LTC", Name: "Litecoin", CoinGeckoID: "litecoin", CoinPaprikaID: "ltc-litecoin"},
}

var (
	bySymbol      map[string]Asset
	byCoinGeckoID map[string]Asset
)

// KnownSymbols lists registry symbols in registry order.
var KnownSymbols []string

func init() {
	bySymbol = make(map[string]Asset, len(registry))
	byCoinGeckoID = make(map[string]Asset, len(registry))
	KnownSymbols = make([]string, 0, len(registry))
	for _, a := range registry {
		bySymbol[a.Symbol] = a
		byCoinGeckoID[a.CoinGeckoID] = a
		KnownSymbols = append(KnownSymbols, a.Symbol)
	}
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// LookupAsset resolves a ticker symbol. Unknown symbols get a best-effort
// asset whose slugs are derived from the lower-cased ticker.
func LookupAsset(symbol string) (Asset, bool) {
	symbol = NormalizeSymbol(symbol)
	if a, ok := bySymbol[symbol]; ok {
		return a, true
	}
	lower := strings.ToLower(symbol)
	return Asset{Symbol: symbol, Name: symbol, CoinGeckoID: lower, CoinPaprikaID: lower}, false
}

// AssetByCoinGeckoID resolves a CoinGecko slug back to a registry asset.
func AssetByCoinGeckoID(id string) (Asset, bool) {
	a, ok := byCoinGeckoID[strings.ToLower(strings.TrimSpace(id))]
	return a, ok
}
