// Package httpclient provides an instrumented HTTP client with OTEL tracing
// and metrics. Instances are built per remote collaborator so request
// counters and spans carry the provider name.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// TraceOption selects which payloads get attached to spans.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

// Client builds requests against one remote service.
type Client interface {
	NewRequest() Request
	NewRequestWithOptions(opts ...RequestOption) Request
}

// ClientOption configures a client at construction time.
type ClientOption func(*clientOptions)

type clientOptions struct {
	providerName   string
	baseURL        string
	requestTimeout time.Duration
	headers        map[string]string
	tracer         trace.Tracer
	meterProvider  metric.MeterProvider
	traceRequest   bool
	traceResponse  bool
}

// WithProviderName names the remote service for metrics and traces.
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) { o.providerName = name }
}

// WithBaseURL prefixes relative request paths with url.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) { o.baseURL = url }
}

// WithRequestTimeout bounds each request end to end.
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) { o.requestTimeout = timeout }
}

// WithHeaders sets headers applied to every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) { o.headers = headers }
}

// WithMeterProvider overrides the global OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *clientOptions) { o.meterProvider = mp }
}

// WithTraceOptions attaches request and/or response bodies to spans.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.traceRequest = true
			case TraceResponse:
				o.traceResponse = true
			}
		}
	}
}

type instrumentedClient struct {
	http           *http.Client
	requestCounter metric.Int64Counter
	providerName   string
	tracer         trace.Tracer
	baseURL        string
	defaultHeaders map[string]string
	traceRequest   bool
	traceResponse  bool
}

// NewInstrumentedClient creates a client with a pooled, OTEL-wrapped
// transport.
func NewInstrumentedClient(opts ...ClientOption) (Client, error) {
	options := &clientOptions{requestTimeout: defaultRequestTimeout}
	for _, o := range opts {
		o(options)
	}

	transport := otelhttp.NewTransport(
		&http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxConnsPerHost: defaultMaxConnsPerHost,
			IdleConnTimeout: defaultIdleConnTimeout,
		},
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	providerName := options.providerName
	if providerName == "" {
		providerName = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		"instrumented_http_client",
		metric.WithInstrumentationAttributes(attribute.String("provider", providerName)),
	)
	requestCounter, err := meter.Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer("instrumented_http_client")
	}

	return &instrumentedClient{
		http: &http.Client{
			Transport: transport,
			Timeout:   options.requestTimeout,
		},
		requestCounter: requestCounter,
		providerName:   providerName,
		tracer:         tracer,
		baseURL:        options.baseURL,
		defaultHeaders: options.headers,
		traceRequest:   options.traceRequest,
		traceResponse:  options.traceResponse,
	}, nil
}

func (c *instrumentedClient) NewRequest() Request {
	return c.NewRequestWithOptions()
}

func (c *instrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	options := &requestOptions{}
	for _, o := range opts {
		o(options)
	}

	headers := make(map[string]string, len(c.defaultHeaders))
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}

	return &request{
		client:         c.http,
		requestCounter: c.requestCounter,
		providerName:   c.providerName,
		tracer:         c.tracer,
		baseURL:        c.baseURL,
		headers:        headers,
		errorHandler:   options.responseErrorHandler,
		labels:         options.labels,
		traceRequest:   c.traceRequest,
		traceResponse:  c.traceResponse,
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	responseErrorHandler ResponseErrorHandler
	labels               []*Label
}

// ResponseErrorHandler inspects a finished response and turns application
// level failures into errors. Returning nil accepts the response.
type ResponseErrorHandler func(statusCode int, body []byte) error

// WithResponseErrorHandler sets the handler run after every response.
func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *requestOptions) { o.responseErrorHandler = handler }
}

// Label is a key-value pair attached to request metrics.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a label.
func NewLabel(key, value string) *Label {
	return &Label{Key: key, Value: value}
}

// WithLabels attaches labels to the request counter.
func WithLabels(labels ...*Label) RequestOption {
	return func(o *requestOptions) { o.labels = labels }
}
