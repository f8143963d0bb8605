// Package marketdata собирает FundingSnapshot из внешних источников.
//
// Два варианта шлюза:
//   - RatesGateway: только агрегатор ставок (OI по умолчанию, без цен);
//   - HybridGateway: ставки из агрегатора + OI/стакан из биржевых адаптеров.
package marketdata

import (
	"context"
	"time"

	"fundingarb/internal/models"
)

// OrderbookTop - верх стакана одного инструмента
type OrderbookTop struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// FundingInfo - сырой ответ адаптера по funding-ставке
type FundingInfo struct {
	Rate            float64
	MarkPrice       float64
	NextFundingTime *time.Time
}

// Adapter - доступ к данным одной биржи
type Adapter interface {
	FetchFundingRate(ctx context.Context, symbol string) (FundingInfo, error)
	FetchOpenInterestUSD(ctx context.Context, symbol string) (float64, error)
	FetchOrderbookTop(ctx context.Context, symbol string) (OrderbookTop, error)
}

// Gateway - источник рыночных срезов для решающего цикла
type Gateway interface {
	// GetFundingSnapshots возвращает срезы по декартову произведению
	// бирж и символов; отсутствующие комбинации пропускаются.
	GetFundingSnapshots(ctx context.Context, exchanges, symbols []string) ([]models.FundingSnapshot, error)

	// GetOrderbookTops возвращает верх стакана по символам одной биржи.
	GetOrderbookTops(ctx context.Context, exchange string, symbols []string) (map[string]OrderbookTop, error)

	// TopSymbols возвращает до size символов (внутренняя нотация),
	// отобранных по дисперсии funding-ставок. minFRDiff отфильтровывает
	// символы без крупной межбиржевой разницы; в режиме one-exchange
	// фильтр пропускается.
	TopSymbols(ctx context.Context, size int, minFRDiff float64) ([]string, error)
}
