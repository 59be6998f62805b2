package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	// Swap input validation. These strings are user-facing and tested verbatim.
	CodeAmountMissing:      "enter an amount",
	CodeSameToken:          "select two different tokens",
	CodeWalletNotConnected: "connect wallet",
	CodeQuoteNotReady:      "quote not ready",
	CodeInvalidSlippage:    "invalid slippage tolerance",

	// Quote acquisition
	CodeQuoteFetchFailed: "Failed to fetch swap quote",
	CodeMalformedQuote:   "Malformed quote payload",
	CodeQuoteStale:       "Quote is stale",

	// Execution
	CodeExecuteFailed:   "Swap execution failed",
	CodeExecuteInFlight: "swap already in progress",

	// Trading service transport
	CodeTradingServiceError: "Trading service error",

	// Market data
	CodeTokenNotFound:       "Token not found",
	CodePortfolioFetchError: "Failed to fetch portfolio",
	CodePriceFeedError:      "Price feed error",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketReconnecting:    "WebSocket reconnecting",
	CodeWebSocketClosed:          "WebSocket connection closed",
	CodeWebSocketSendError:       "Failed to send WebSocket message",

	// Circuit breaker errors
	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
}
