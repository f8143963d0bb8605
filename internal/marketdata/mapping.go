package marketdata

import "strings"

// Маппинг имён бирж фида на внутреннюю нотацию.
// Отсутствующие в маппинге имена используются как есть.
var feedExchangeMap = map[string]string{
	"binance":     "binance",
	"bybit":       "bybit",
	"okx":         "okx",
	"gate":        "gate",
	"bitget":      "bitget",
	"dydx":        "dydx",
	"hyperliquid": "hyperliquid",
	"vertex":      "vertex",
	"aevo":        "aevo",
	"drift":       "drift",
	"mango":       "mango",
	"rabbitx":     "rabbitx",
	"bluefin":     "bluefin",
	"extended":    "extended",
	"lighter":     "lighter",
	"vest":        "vest",
	"paradex":     "paradex",
}

// Маппинг символов фида ("BTC") на внутреннюю perp-нотацию
// ("BTC/USDT:USDT"). Неизвестные символы мапятся по общему шаблону.
var feedSymbolMap = map[string]string{
	"BTC":   "BTC/USDT:USDT",
	"ETH":   "ETH/USDT:USDT",
	"SOL":   "SOL/USDT:USDT",
	"XRP":   "XRP/USDT:USDT",
	"DOGE":  "DOGE/USDT:USDT",
	"ADA":   "ADA/USDT:USDT",
	"AVAX":  "AVAX/USDT:USDT",
	"LINK":  "LINK/USDT:USDT",
	"DOT":   "DOT/USDT:USDT",
	"MATIC": "MATIC/USDT:USDT",
	"ARB":   "ARB/USDT:USDT",
	"OP":    "OP/USDT:USDT",
	"SUI":   "SUI/USDT:USDT",
	"APT":   "APT/USDT:USDT",
	"NEAR":  "NEAR/USDT:USDT",
	"FIL":   "FIL/USDT:USDT",
	"ATOM":  "ATOM/USDT:USDT",
	"UNI":   "UNI/USDT:USDT",
	"LTC":   "LTC/USDT:USDT",
	"BCH":   "BCH/USDT:USDT",
	"INJ":   "INJ/USDT:USDT",
	"TIA":   "TIA/USDT:USDT",
	"SEI":   "SEI/USDT:USDT",
	"PEPE":  "PEPE/USDT:USDT",
	"WIF":   "WIF/USDT:USDT",
}

// FeedToInternalExchange переводит имя биржи фида во внутреннюю нотацию
func FeedToInternalExchange(feedName string) string {
	if internal, ok := feedExchangeMap[feedName]; ok {
		return internal
	}
	return feedName
}

// FeedToInternalSymbol переводит символ фида во внутреннюю нотацию
func FeedToInternalSymbol(feedSymbol string) string {
	if internal, ok := feedSymbolMap[feedSymbol]; ok {
		return internal
	}
	return feedSymbol + "/USDT:USDT"
}

// InternalToFeedSymbol переводит внутренний символ в нотацию фида:
// "BTC/USDT:USDT" -> "BTC"
func InternalToFeedSymbol(internalSymbol string) string {
	if i := strings.Index(internalSymbol, "/"); i >= 0 {
		return internalSymbol[:i]
	}
	return internalSymbol
}
