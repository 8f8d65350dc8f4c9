package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"goinsight/domain/dataset"
)

// RetailGeneratorConfig configures the retail data generator
type RetailGeneratorConfig struct {
	Rows       int   `json:"rows"`
	StoreCount int   `json:"store_count"`
	StartYear  int   `json:"start_year"`
	Years      int   `json:"years"`
	Seed       int64 `json:"seed"`
	// MissingRate is the probability that a profit cell is left empty
	MissingRate float64 `json:"missing_rate"`
}

// DefaultRetailConfig returns sensible defaults for retail data generation
func DefaultRetailConfig() RetailGeneratorConfig {
	return RetailGeneratorConfig{
		Rows:        400,
		StoreCount:  20,
		StartYear:   2019,
		Years:       5,
		Seed:        42,
		MissingRate: 0.02,
	}
}

var (
	retailRegions    = []string{"north", "south", "east", "west"}
	retailCategories = []string{"furniture", "office", "technology"}
	regionWeights    = map[string]float64{"north": 1.4, "south": 0.8, "east": 1.1, "west": 0.9}
	categoryPrices   = map[string]float64{"furniture": 220, "office": 35, "technology": 410}
)

// RetailFields is the declared schema of generated retail data
var RetailFields = []dataset.Field{
	{Name: "region", Type: dataset.TypeNominal},
	{Name: "category", Type: dataset.TypeNominal},
	{Name: "store", Type: dataset.TypeNominal},
	{Name: "year", Type: dataset.TypeTemporal},
	{Name: "sales", Type: dataset.TypeQuantitative},
	{Name: "profit", Type: dataset.TypeQuantitative},
	{Name: "quantity", Type: dataset.TypeQuantitative},
}

// RetailDataGenerator generates order lines with correlated sales and profit
type RetailDataGenerator struct {
	config RetailGeneratorConfig
	rng    *rand.Rand
}

// NewRetailDataGenerator creates a new retail data generator
func NewRetailDataGenerator(config RetailGeneratorConfig) *RetailDataGenerator {
	return &RetailDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the dataset. Same config, same records.
func (g *RetailDataGenerator) Generate() *dataset.Dataset {
	records := make([]dataset.Record, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		records = append(records, g.orderLine())
	}
	fields := append([]dataset.Field(nil), RetailFields...)
	return dataset.New("retail", fields, records)
}

func (g *RetailDataGenerator) orderLine() dataset.Record {
	region := retailRegions[g.rng.Intn(len(retailRegions))]
	category := retailCategories[g.rng.Intn(len(retailCategories))]
	store := fmt.Sprintf("store_%02d", g.storeIndex()+1)
	year := g.config.StartYear + g.rng.Intn(g.config.Years)

	quantity := 1 + g.rng.Intn(9)
	price := categoryPrices[category] * (0.8 + 0.4*g.rng.Float64())
	growth := 1 + 0.05*float64(year-g.config.StartYear)
	sales := round2(float64(quantity) * price * regionWeights[region] * growth)

	// Profit follows sales with category-specific margins and noise
	margin := map[string]float64{"furniture": 0.08, "office": 0.22, "technology": 0.17}[category]
	var profit interface{} = round2(sales*margin + g.rng.NormFloat64()*sales*0.03)
	if g.rng.Float64() < g.config.MissingRate {
		profit = nil
	}

	return dataset.Record{
		"region":   region,
		"category": category,
		"store":    store,
		"year":     strconv.Itoa(year),
		"sales":    sales,
		"profit":   profit,
		"quantity": quantity,
	}
}

// storeIndex skews traffic toward low-numbered stores so grouping keeps a stable top set
func (g *RetailDataGenerator) storeIndex() int {
	n := g.config.StoreCount
	idx := int(math.Abs(g.rng.NormFloat64()) * float64(n) / 2.5)
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
