// Package pricing resolves prices for resource price components through the
// pricing service's GraphQL API. Queries for a whole resource graph are
// batched into a single request; a failed batch degrades to per-query
// requests, and queries that still fail resolve to a zero price.
package pricing

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plancost/core/schema"
	"plancost/internal/config"
	"plancost/internal/errors"
	"plancost/internal/logging"
)

// QueryRunner executes pricing queries for resources
type QueryRunner interface {
	RunQueries(ctx context.Context, resource schema.Resource) ([]QueryResult, error)
}

// QueryResult carries the pricing response for one price component
type QueryResult struct {
	Resource       schema.Resource
	PriceComponent schema.PriceComponent
	Result         PriceEnvelope
}

// PriceEnvelope is the decoded GraphQL response for a single query
type PriceEnvelope struct {
	Data struct {
		Products []Product `json:"products"`
	} `json:"data"`
}

// Product is one pricing catalog match
type Product struct {
	Prices []Price `json:"prices"`
}

// Price is one price point for a product
type Price struct {
	USD       decimal.Decimal `json:"USD"`
	PriceHash string          `json:"priceHash"`
}

// GraphQLQueryRunner batches component queries against a GraphQL endpoint
type GraphQLQueryRunner struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewGraphQLQueryRunner creates a runner from the pricing configuration
func NewGraphQLQueryRunner(cfg config.PricingConfig) *GraphQLQueryRunner {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GraphQLQueryRunner{
		endpoint: cfg.APIEndpoint,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
	}
}

// gqlQuery is a single GraphQL request document with its variables
type gqlQuery struct {
	Query     string       `json:"query"`
	Variables gqlVariables `json:"variables"`
}

type gqlVariables struct {
	ProductFilter *schema.ProductFilter `json:"productFilter"`
	PriceFilter   *schema.PriceFilter   `json:"priceFilter"`
}

// componentQuery pairs a pending query with the component it prices
type componentQuery struct {
	resource  schema.Resource
	component schema.PriceComponent
	query     gqlQuery
}

const productQuery = `
	query($productFilter: ProductFilter!, $priceFilter: PriceFilter) {
		products(filter: $productFilter) {
			prices(filter: $priceFilter) {
				priceHash
				USD
			}
		}
	}
`

// RunQueries prices every queryable component of the resource and its
// flattened sub-resources. Results are positional: one per batched query,
// in batch order.
func (r *GraphQLQueryRunner) RunQueries(ctx context.Context, resource schema.Resource) ([]QueryResult, error) {
	queries := r.batchQueries(resource)
	if len(queries) == 0 {
		return nil, nil
	}

	logging.Debug("Running pricing queries",
		zap.String("resource", resource.Address()),
		zap.Int("queries", len(queries)))

	envelopes, err := r.executeBatch(ctx, queries)
	if err != nil {
		logging.Warn("Batch pricing request failed, falling back to individual queries",
			zap.String("resource", resource.Address()),
			zap.Error(err))
		envelopes = r.executeIndividually(ctx, queries)
	}

	r.retryZeroMatches(ctx, queries, envelopes)

	return unpackResults(queries, envelopes), nil
}

// retryZeroMatches re-runs queries that matched no products after moving
// a marketoption product attribute into the price filter's purchase
// option. Each query is retried at most once; a retry that fails or still
// matches nothing keeps the empty result.
func (r *GraphQLQueryRunner) retryZeroMatches(ctx context.Context, queries []componentQuery, envelopes []PriceEnvelope) {
	for i := range queries {
		if i >= len(envelopes) || len(envelopes[i].Data.Products) > 0 {
			continue
		}
		retried, ok := retryQuery(queries[i].query)
		if !ok {
			continue
		}

		logging.Debug("Retrying zero-match query with purchase option filter",
			zap.String("resource", queries[i].resource.Address()),
			zap.String("component", queries[i].component.Name()),
			zap.Stringer("query", retried))

		envelope, err := r.executeSingle(ctx, retried)
		if err != nil {
			logging.Warn("Pricing retry failed, using zero price",
				zap.String("resource", queries[i].resource.Address()),
				zap.String("component", queries[i].component.Name()),
				zap.Error(err))
			continue
		}
		envelopes[i] = envelope
	}
}

// batchQueries builds the ordered query list for a resource tree. The
// resource's own components come first, then each sub-resource's in
// flattening order.
func (r *GraphQLQueryRunner) batchQueries(resource schema.Resource) []componentQuery {
	var queries []componentQuery

	appendFor := func(res schema.Resource) {
		for _, component := range res.PriceComponents() {
			if component.SkipQuery() {
				continue
			}
			queries = append(queries, componentQuery{
				resource:  res,
				component: component,
				query:     buildQuery(component.ProductFilter(), component.PriceFilter()),
			})
		}
	}

	appendFor(resource)
	for _, sub := range schema.FlattenSubResources(resource) {
		appendFor(sub)
	}
	return queries
}

func buildQuery(productFilter *schema.ProductFilter, priceFilter *schema.PriceFilter) gqlQuery {
	return gqlQuery{
		Query: productQuery,
		Variables: gqlVariables{
			ProductFilter: productFilter,
			PriceFilter:   priceFilter,
		},
	}
}

// executeBatch posts all queries as one JSON array and decodes the
// positional array of envelopes.
func (r *GraphQLQueryRunner) executeBatch(ctx context.Context, queries []componentQuery) ([]PriceEnvelope, error) {
	docs := make([]gqlQuery, len(queries))
	for i, q := range queries {
		docs[i] = q.query
	}

	body, err := json.Marshal(docs)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "encoding pricing queries", err)
	}

	respBody, err := r.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var envelopes []PriceEnvelope
	if err := json.Unmarshal(respBody, &envelopes); err != nil {
		return nil, errors.Wrap(errors.TypePricing, "decoding pricing response", err)
	}
	return envelopes, nil
}

// executeIndividually prices each query on its own. Failures resolve to an
// empty envelope so pricing degrades instead of aborting.
func (r *GraphQLQueryRunner) executeIndividually(ctx context.Context, queries []componentQuery) []PriceEnvelope {
	envelopes := make([]PriceEnvelope, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			envelope, err := r.executeSingle(gctx, q.query)
			if err != nil {
				logging.Warn("Pricing query failed, using zero price",
					zap.String("resource", q.resource.Address()),
					zap.String("component", q.component.Name()),
					zap.Error(err))
				return nil
			}
			envelopes[i] = envelope
			return nil
		})
	}
	g.Wait()

	return envelopes
}

func (r *GraphQLQueryRunner) executeSingle(ctx context.Context, query gqlQuery) (PriceEnvelope, error) {
	var envelope PriceEnvelope

	body, err := json.Marshal(query)
	if err != nil {
		return envelope, errors.Wrap(errors.TypeInternal, "encoding pricing query", err)
	}

	respBody, err := r.post(ctx, body)
	if err != nil {
		return envelope, err
	}

	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return envelope, errors.Wrap(errors.TypePricing, "decoding pricing response", err)
	}
	return envelope, nil
}

func (r *GraphQLQueryRunner) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "building pricing request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-Api-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.TypeNetwork, "pricing request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.TypeNetwork, "pricing service returned %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, errors.Wrap(errors.TypeNetwork, "reading pricing response", err)
	}
	return buf.Bytes(), nil
}

// unpackResults pairs envelopes back with their queries by position. A
// missing envelope (short response) resolves to zero products.
func unpackResults(queries []componentQuery, envelopes []PriceEnvelope) []QueryResult {
	results := make([]QueryResult, len(queries))
	for i, q := range queries {
		var envelope PriceEnvelope
		if i < len(envelopes) {
			envelope = envelopes[i]
		}
		results[i] = QueryResult{
			Resource:       q.resource,
			PriceComponent: q.component,
			Result:         envelope,
		}
	}
	return results
}

// hasMarketOptionFilter reports whether the product filter carries a
// marketoption attribute, the legacy spelling of the purchase option.
func hasMarketOptionFilter(filter *schema.ProductFilter) (string, bool) {
	if filter == nil {
		return "", false
	}
	for _, af := range filter.AttributeFilters {
		if strings.EqualFold(af.Key, "marketoption") && af.Value != "" {
			return af.Value, true
		}
	}
	return "", false
}

// retryQuery rewrites a zero-match query, moving the marketoption product
// attribute into the price filter's purchase option. Returns false when the
// query has no such attribute to move.
func retryQuery(query gqlQuery) (gqlQuery, bool) {
	marketOption, ok := hasMarketOptionFilter(query.Variables.ProductFilter)
	if !ok {
		return query, false
	}

	product := *query.Variables.ProductFilter
	attrs := make([]schema.Filter, 0, len(product.AttributeFilters))
	for _, af := range product.AttributeFilters {
		if strings.EqualFold(af.Key, "marketoption") {
			continue
		}
		attrs = append(attrs, af)
	}
	product.AttributeFilters = attrs

	var price schema.PriceFilter
	if query.Variables.PriceFilter != nil {
		price = *query.Variables.PriceFilter
	}
	price.PurchaseOption = strings.ToLower(marketOption)

	query.Variables.ProductFilter = &product
	query.Variables.PriceFilter = &price
	return query, true
}

// String renders a compact form for logs
func (q gqlQuery) String() string {
	b, err := json.Marshal(q.Variables)
	if err != nil {
		return "<unencodable query>"
	}
	return fmt.Sprintf("variables=%s", b)
}
