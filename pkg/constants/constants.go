// Package constants provides shared constants for the home-affordability application.
package constants

// Affordability heuristic constants
const (
	// FrontEndRatio is the share of gross income allowed for housing costs (28% rule)
	FrontEndRatio = 0.28

	// PaymentToPriceMultiplier converts a monthly housing allowance into a home price.
	// It is a fixed stand-in for a 30-year amortization factor, not a computed one.
	PaymentToPriceMultiplier = 240

	// WeeksPerYear is the number of pay periods for weekly income
	WeeksPerYear = 52

	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Mortgage defaults
const (
	// DefaultInterestRate is the annual rate in percent used when none is given
	DefaultInterestRate = 6.5

	// DefaultLoanDuration is the loan term in years used when none is given
	DefaultLoanDuration = 30

	// MaxLoanDuration is the longest loan term in years a quote accepts
	MaxLoanDuration = 50

	// GuidedInterestRate is the fixed annual rate in percent assumed by the guided plan
	GuidedInterestRate = 6.8

	// GuidedDownPaymentPercent is the down payment share assumed by the guided plan
	GuidedDownPaymentPercent = 20.0
)

// Budget band constants
const (
	// BandLowerFactor scales the affordable price down to the lower search bound
	BandLowerFactor = 0.9

	// BandUpperFactor scales the affordable price up to the upper search bound
	BandUpperFactor = 1.1
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "HOME_AFFORDABILITY"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Listings API defaults
const (
	// DefaultListingsBaseURL is the RapidAPI endpoint for the Zillow search API
	DefaultListingsBaseURL = "https://zillow56.p.rapidapi.com"

	// DefaultListingsHost is sent as the X-RapidAPI-Host header
	DefaultListingsHost = "zillow56.p.rapidapi.com"

	// DefaultListingsHomeType is the home_type filter for searches
	DefaultListingsHomeType = "Houses"

	// DefaultListingsLimit is the number of results requested per search
	DefaultListingsLimit = 12

	// DefaultListingsRequestsPerSecond caps outbound search calls
	DefaultListingsRequestsPerSecond = 2.0

	// PlaceholderImageURL is used when a listing has no image
	PlaceholderImageURL = "https://via.placeholder.com/300x200?text=Home+Image"

	// BrowseBaseURL is the public listings site
	BrowseBaseURL = "https://www.zillow.com"

	// ZIPCodeLength is the number of digits in a US ZIP code
	ZIPCodeLength = 5
)

// DateTimeLayout is the month layout used for schedule start dates and
// payment dates.
const DateTimeLayout = "2006-01"

// State store constants
const (
	// StateBackendFile persists the form record to a JSON file
	StateBackendFile = "file"

	// StateBackendRedis persists the form record to redis
	StateBackendRedis = "redis"

	// StateBackendNone disables persistence
	StateBackendNone = "none"

	// DefaultStateKey is the key the form record is stored under
	DefaultStateKey = "mortgageData"

	// DefaultStatePath is the default file used by the file backend
	DefaultStatePath = "mortgage-data.json"
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
