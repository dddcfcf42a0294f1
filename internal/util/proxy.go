package util

import (
	"net/http"
	"net/url"
	"time"
)

// NewProxyFunc returns the proxy selector for outbound HTTP clients.
// Without configured proxies it defers to the environment.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewHTTPClient builds the client used for oracle calls and document fetches
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(httpProxy, httpsProxy)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
