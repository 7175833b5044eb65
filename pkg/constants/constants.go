// Package constants provides shared constants for the rentcheck application.
package constants

// DateLayout is the calendar date format used in ledger files, configuration
// and query parameters.
const DateLayout = "2006-01-02"

// TimestampLayout is the format of alert timestamps in ledger files.
const TimestampLayout = "2006-01-02T15:04:05"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// PercentPrecision is the number of decimals kept for displayed percentages
	PercentPrecision = 1

	// Currency is the ISO code of every monetary amount in a ledger
	Currency = "EUR"
)

// Policy defaults. These are business rules quoted verbatim in rent letters,
// so they are only overridden through configuration, never recomputed.
const (
	// DefaultSuggestedIncreaseRatio is the share of the market gap proposed as a rent increase
	DefaultSuggestedIncreaseRatio = "0.75"

	// DefaultUrgencyThresholdDays is the notify-by window, in days, that counts as urgent
	DefaultUrgencyThresholdDays = 14

	// DefaultTaxRate is the flat capital income tax rate in percent
	DefaultTaxRate = "30"

	// DefaultHigherBracketThreshold is the net income above which the higher rate applies
	DefaultHigherBracketThreshold = "30000"

	// DefaultHigherBracketRate is the capital income tax rate above the threshold
	DefaultHigherBracketRate = "34"

	// ShortlistMinimumScore is the lowest candidate score kept on a listing shortlist
	ShortlistMinimumScore = 78

	// LetterComparableLimit is the maximum number of comparables quoted in a rent letter
	LetterComparableLimit = 4

	// LetterNoticeMonths is how many months after the notice a rent increase takes effect
	LetterNoticeMonths = 2

	// DepositMonths is the number of monthly rents held as a security deposit
	DepositMonths = 2
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatMarkdown is markdown rendered for the terminal
	OutputFormatMarkdown = "markdown"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for ledger files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheTTL is how long computed API responses stay cached
	DefaultCacheTTL = "15m"
)
