package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Swap pipeline error codes
const (
	// Swap input validation
	CodeAmountMissing      Code = "AMOUNT_MISSING"
	CodeSameToken          Code = "SAME_TOKEN"
	CodeWalletNotConnected Code = "WALLET_NOT_CONNECTED"
	CodeQuoteNotReady      Code = "QUOTE_NOT_READY"
	CodeInvalidSlippage    Code = "INVALID_SLIPPAGE"

	// Quote acquisition (recovered via fallback, not user-visible)
	CodeQuoteFetchFailed Code = "QUOTE_FETCH_FAILED"
	CodeMalformedQuote   Code = "MALFORMED_QUOTE"
	CodeQuoteStale       Code = "QUOTE_STALE"

	// Execution
	CodeExecuteFailed   Code = "EXECUTE_FAILED"
	CodeExecuteInFlight Code = "EXECUTE_IN_FLIGHT"

	// Trading service transport
	CodeTradingServiceError Code = "TRADING_SERVICE_ERROR"

	// Market data
	CodeTokenNotFound       Code = "TOKEN_NOT_FOUND"
	CodePortfolioFetchError Code = "PORTFOLIO_FETCH_ERROR"
	CodePriceFeedError      Code = "PRICE_FEED_ERROR"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketReconnecting    Code = "WEBSOCKET_RECONNECTING"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
	CodeWebSocketSendError       Code = "WEBSOCKET_SEND_ERROR"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
)
