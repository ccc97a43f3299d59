package pricing

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"plancost/core/schema"
	"plancost/internal/logging"
)

// PopulatePrices runs pricing queries for a resource and writes the
// resolved price and price hash onto each component
func PopulatePrices(ctx context.Context, runner QueryRunner, resource schema.Resource) error {
	results, err := runner.RunQueries(ctx, resource)
	if err != nil {
		return err
	}

	for _, result := range results {
		price, hash := selectPrice(result)
		result.PriceComponent.SetPrice(price)
		result.PriceComponent.SetPriceHash(hash)
	}
	return nil
}

// selectPrice picks the price for a component from its query result. With
// multiple product matches the first strictly positive price wins; an
// all-zero result keeps the first price, and no match at all prices the
// component at zero.
func selectPrice(result QueryResult) (decimal.Decimal, string) {
	products := result.Result.Data.Products

	var prices []Price
	for _, product := range products {
		prices = append(prices, product.Prices...)
	}

	if len(prices) == 0 {
		logging.Warn("No prices found, using zero price",
			zap.String("resource", result.Resource.Address()),
			zap.String("component", result.PriceComponent.Name()))
		return decimal.Zero, ""
	}

	if len(products) > 1 {
		logging.Warn("Multiple products found, picking the first positive price",
			zap.String("resource", result.Resource.Address()),
			zap.String("component", result.PriceComponent.Name()),
			zap.Int("products", len(products)))
	}

	for _, price := range prices {
		if price.USD.IsPositive() {
			return price.USD, price.PriceHash
		}
	}
	return prices[0].USD, prices[0].PriceHash
}
