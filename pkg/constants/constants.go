// Package constants provides shared constants for the dcf-valuation application.
package constants

import "time"

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default valuation input file name
	DefaultConfigFile = "valuation.yaml"

	// ExampleConfigFile is the example valuation input file name
	ExampleConfigFile = "valuation.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultStoreFile is the YAML file backing the inputs store when no
	// database is configured
	DefaultStoreFile = "dcf-inputs.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024

	// DefaultTickerSearchLimit caps the number of ticker candidates returned
	DefaultTickerSearchLimit = 20
)

// Price history defaults
const (
	// DefaultHistoryBaseURL is the chart endpoint host used for daily closes
	DefaultHistoryBaseURL = "https://query1.finance.yahoo.com"

	// DefaultHistoryLookbackMonths is the price-history window length
	DefaultHistoryLookbackMonths = 6

	// DefaultHistoryInterval is the bar size requested from the chart endpoint
	DefaultHistoryInterval = "1d"

	// DefaultHistoryTimeout bounds a single upstream history request
	DefaultHistoryTimeout = 10 * time.Second

	// DefaultHistoryCacheSize is the number of tickers kept in the history cache
	DefaultHistoryCacheSize = 256

	// DefaultHistoryCacheTTL is how long a cached history stays fresh
	DefaultHistoryCacheTTL = time.Minute
)

// Validation constants
const (
	// AbsoluteTolerance is the absolute tolerance for float comparisons
	AbsoluteTolerance = 1e-9

	// RelativeTolerance is the relative tolerance for float comparisons
	RelativeTolerance = 1e-9

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
