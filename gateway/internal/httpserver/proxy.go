package httpserver

import (
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"
)

// One transport shared by all downstream proxies.
var proxyTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 60 * time.Second,
	}).DialContext,
	MaxIdleConns:          200,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// newProxy builds an echo handler that forwards to one downstream service,
// stripping the gateway prefix and keeping X-Forwarded-* intact.
func newProxy(target, stripPrefix string) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = proxyTransport
	p.FlushInterval = 100 * time.Millisecond

	defaultDirector := p.Director
	p.Director = func(req *http.Request) {
		host := req.Host
		proto := "http"
		if req.TLS != nil {
			proto = "https"
		} else if xf := req.Header.Get("X-Forwarded-Proto"); xf != "" {
			proto = xf
		}

		defaultDirector(req)

		if stripPrefix != "" {
			req.URL.Path = strings.TrimPrefix(req.URL.Path, stripPrefix)
			if rp := req.URL.RawPath; rp != "" {
				req.URL.RawPath = strings.TrimPrefix(rp, stripPrefix)
			}
		}

		if req.Header.Get("X-Forwarded-Proto") == "" {
			req.Header.Set("X-Forwarded-Proto", proto)
		}
		if req.Header.Get("X-Forwarded-Host") == "" && host != "" {
			req.Header.Set("X-Forwarded-Host", host)
		}
	}

	return func(c echo.Context) error {
		p.ServeHTTP(c.Response(), c.Request())
		return nil
	}, nil
}
