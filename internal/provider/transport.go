package provider

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// FetchTimeout bounds every upstream call.
const FetchTimeout = 15 * time.Second

// baseTransportConfig returns the shared HTTP transport configuration used by provider clients.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: FetchTimeout,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
	}
}

// NewHTTPClient creates a resty client for baseURL with the fetch timeout applied.
func NewHTTPClient(baseURL string) *resty.Client {
	return resty.New().
		SetTransport(baseTransportConfig()).
		SetBaseURL(baseURL).
		SetTimeout(FetchTimeout).
		SetHeader("Accept", "application/json")
}
