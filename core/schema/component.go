// Package schema - Price component model
package schema

import (
	"github.com/shopspring/decimal"
)

// TimeUnit is the billing period a component's quantity is expressed in
type TimeUnit string

const (
	TimeUnitHour  TimeUnit = "hour"
	TimeUnitMonth TimeUnit = "month"
)

// HoursInMonth is the fixed hour/month conversion factor
var HoursInMonth = decimal.NewFromInt(730)

var (
	hourSeconds  = decimal.NewFromInt(60 * 60)
	monthSeconds = decimal.NewFromInt(60 * 60 * 730)
)

// Seconds returns the length of the time unit in seconds
func (u TimeUnit) Seconds() decimal.Decimal {
	if u == TimeUnitMonth {
		return monthSeconds
	}
	return hourSeconds
}

// QuantityFunc derives a component's quantity from its resource's raw
// attributes, expressed in the component's own time unit.
type QuantityFunc func(Resource) decimal.Decimal

// SkipFunc decides whether a component is excluded from both the catalog
// query and the output.
type SkipFunc func(Resource) bool

// PriceComponent is one billable dimension of a resource node. Its price
// result is mutable and set exactly once by the pricing query engine.
type PriceComponent interface {
	// Name identifies the component within its resource
	Name() string

	// Unit is the display unit (e.g. "GB", "hours")
	Unit() string

	// TimeUnit is the period the quantity is expressed in
	TimeUnit() TimeUnit

	// ProductFilter is the catalog product query for this component
	ProductFilter() *ProductFilter

	// PriceFilter optionally refines the price side of the query
	PriceFilter() *PriceFilter

	// SkipQuery reports whether the component is excluded entirely
	SkipQuery() bool

	// Quantity is the usage quantity in the component's time unit
	Quantity() decimal.Decimal

	// Price is the resolved unit price, zero until set
	Price() decimal.Decimal

	// SetPrice stores the unit price resolved from the catalog
	SetPrice(price decimal.Decimal)

	// PriceHash is the opaque catalog identity of the matched price
	PriceHash() string

	// SetPriceHash stores the catalog price identity
	SetPriceHash(hash string)

	// HourlyCost is Price * Quantity * (hour / time unit)
	HourlyCost() decimal.Decimal

	// MonthlyCost is HourlyCost * 730
	MonthlyCost() decimal.Decimal
}

// BasePriceComponent is the standard PriceComponent implementation.
// Resource constructors configure it with filters and a quantity function;
// the query engine later fills in the price result.
type BasePriceComponent struct {
	name          string
	resource      Resource
	unit          string
	timeUnit      TimeUnit
	productFilter *ProductFilter
	priceFilter   *PriceFilter
	quantityFunc  QuantityFunc
	skipFunc      SkipFunc
	price         decimal.Decimal
	priceHash     string
}

// NewBasePriceComponent creates a price component owned by resource
func NewBasePriceComponent(name string, resource Resource, unit string, timeUnit TimeUnit) *BasePriceComponent {
	return &BasePriceComponent{
		name:     name,
		resource: resource,
		unit:     unit,
		timeUnit: timeUnit,
		price:    decimal.Zero,
	}
}

// Name returns the component name
func (c *BasePriceComponent) Name() string {
	return c.name
}

// Resource returns the owning resource
func (c *BasePriceComponent) Resource() Resource {
	return c.resource
}

// Unit returns the display unit
func (c *BasePriceComponent) Unit() string {
	return c.unit
}

// TimeUnit returns the quantity period
func (c *BasePriceComponent) TimeUnit() TimeUnit {
	return c.timeUnit
}

// ProductFilter returns the catalog product query
func (c *BasePriceComponent) ProductFilter() *ProductFilter {
	return c.productFilter
}

// SetProductFilter sets the catalog product query
func (c *BasePriceComponent) SetProductFilter(filter *ProductFilter) {
	c.productFilter = filter
}

// PriceFilter returns the price-side refinement, or nil
func (c *BasePriceComponent) PriceFilter() *PriceFilter {
	return c.priceFilter
}

// SetPriceFilter sets the price-side refinement
func (c *BasePriceComponent) SetPriceFilter(filter *PriceFilter) {
	c.priceFilter = filter
}

// SkipQuery reports whether the component is excluded from query and output
func (c *BasePriceComponent) SkipQuery() bool {
	return c.skipFunc != nil && c.skipFunc(c.resource)
}

// SetSkipFunc sets the skip predicate
func (c *BasePriceComponent) SetSkipFunc(fn SkipFunc) {
	c.skipFunc = fn
}

// Quantity returns the usage quantity in the component's own time unit
func (c *BasePriceComponent) Quantity() decimal.Decimal {
	if c.quantityFunc == nil {
		return decimal.NewFromInt(1)
	}
	return c.quantityFunc(c.resource)
}

// SetQuantityFunc sets the quantity function
func (c *BasePriceComponent) SetQuantityFunc(fn QuantityFunc) {
	c.quantityFunc = fn
}

// Price returns the resolved unit price
func (c *BasePriceComponent) Price() decimal.Decimal {
	return c.price
}

// SetPrice stores the resolved unit price
func (c *BasePriceComponent) SetPrice(price decimal.Decimal) {
	c.price = price
}

// PriceHash returns the catalog price identity token
func (c *BasePriceComponent) PriceHash() string {
	return c.priceHash
}

// SetPriceHash stores the catalog price identity token
func (c *BasePriceComponent) SetPriceHash(hash string) {
	c.priceHash = hash
}

// HourlyCost converts the priced quantity to an hourly cost. The division
// comes last so month-unit costs stay exact.
func (c *BasePriceComponent) HourlyCost() decimal.Decimal {
	return c.price.Mul(c.Quantity()).Mul(hourSeconds).Div(c.timeUnit.Seconds())
}

// MonthlyCost converts the priced quantity to a monthly cost. Month-unit
// components bill price times quantity directly, keeping the amount exact
// instead of round-tripping through the rounded hourly division.
func (c *BasePriceComponent) MonthlyCost() decimal.Decimal {
	cost := c.price.Mul(c.Quantity())
	if c.timeUnit == TimeUnitMonth {
		return cost
	}
	return cost.Mul(HoursInMonth)
}
