// Package lambdahttp serves an http.Handler from API Gateway HTTP API (payload v2) events.
package lambdahttp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// Adapter translates Lambda events into handler calls.
type Adapter struct {
	handler http.Handler
	logger  *slog.Logger
}

// New creates an Adapter for handler.
func New(handler http.Handler, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		handler: handler,
		logger:  logger,
	}
}

// Handle processes one API Gateway event. It is designed to be passed to lambda.Start.
// Errors are only returned for events that cannot be turned into a request; handler
// failures are ordinary HTTP responses.
func (a *Adapter) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := newRequest(ctx, event)
	if err != nil {
		a.logger.Error("failed to build request",
			"requestID", event.RequestContext.RequestID,
			"error", err,
		)
		return events.APIGatewayV2HTTPResponse{}, err
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return newResponse(rec), nil
}

func newRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = string(decoded)
	}

	path := event.RawPath
	if path == "" {
		path = "/"
	}
	target := path
	if event.RawQueryString != "" {
		target += "?" + event.RawQueryString
	}

	method := event.RequestContext.HTTP.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}
	if len(event.Cookies) > 0 {
		req.Header.Set("Cookie", strings.Join(event.Cookies, "; "))
	}
	req.Host = event.RequestContext.DomainName
	req.RemoteAddr = event.RequestContext.HTTP.SourceIP
	req.ContentLength = int64(len(body))
	req.RequestURI = target
	return req, nil
}

func newResponse(rec *httptest.ResponseRecorder) events.APIGatewayV2HTTPResponse {
	resp := events.APIGatewayV2HTTPResponse{
		StatusCode: rec.Code,
		Headers:    make(map[string]string, len(rec.Header())),
	}
	for k, v := range rec.Header() {
		if k == "Set-Cookie" {
			resp.Cookies = append(resp.Cookies, v...)
			continue
		}
		resp.Headers[k] = strings.Join(v, ",")
	}

	body := rec.Body.Bytes()
	if utf8.Valid(body) {
		resp.Body = string(body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(body)
		resp.IsBase64Encoded = true
	}
	return resp
}
