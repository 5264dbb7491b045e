// Package proxy turns proxy URIs from proxies.txt into HTTP transports.
package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	xproxy "golang.org/x/net/proxy"
	"h12.io/socks"
)

const (
	SchemeHTTP   = "http"
	SchemeSOCKS4 = "socks4"
	SchemeSOCKS5 = "socks5"
)

// Agent routes requests through a single proxy endpoint.
type Agent struct {
	uri       *url.URL
	transport *http.Transport
}

// Transport returns the round tripper bound to the proxy.
func (a *Agent) Transport() http.RoundTripper { return a.transport }

func (a *Agent) Scheme() string { return a.uri.Scheme }

// String returns the URI with the password hidden.
func (a *Agent) String() string {
	if a == nil {
		return ""
	}
	return a.uri.Redacted()
}

// Close drops idle connections to the proxy.
func (a *Agent) Close() {
	if a != nil {
		a.transport.CloseIdleConnections()
	}
}

// SelectAgent builds an agent for uri. Unsupported or malformed URIs are logged
// and yield nil, which callers treat as "no proxy".
func SelectAgent(uri string, log *zap.SugaredLogger) *Agent {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		log.Warnw("proxy uri is malformed, going direct", "proxy", uri, "err", err)
		return nil
	}

	base := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
	}

	switch strings.ToLower(u.Scheme) {
	case SchemeHTTP:
		base.Proxy = http.ProxyURL(u)
	case SchemeSOCKS5:
		d, err := xproxy.FromURL(u, &net.Dialer{Timeout: 30 * time.Second})
		if err != nil {
			log.Warnw("socks5 dialer failed, going direct", "proxy", u.Redacted(), "err", err)
			return nil
		}
		base.DialContext = contextDialer(d)
	case SchemeSOCKS4:
		dial := socks.Dial(socks4URI(u))
		base.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial(network, addr)
		}
	default:
		log.Warnw("unsupported proxy scheme, going direct", "proxy", u.Redacted(), "scheme", u.Scheme)
		return nil
	}
	return &Agent{uri: u, transport: base}
}

func contextDialer(d xproxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(xproxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}
}

// h12.io/socks takes the connect timeout as a query parameter.
func socks4URI(u *url.URL) string {
	c := *u
	q := c.Query()
	if q.Get("timeout") == "" {
		q.Set("timeout", "30s")
	}
	c.RawQuery = q.Encode()
	return c.String()
}

// LoadList reads newline-delimited proxy URIs, keeping file order.
// A missing file is an empty list.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open proxy list: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan proxy list: %w", err)
	}
	return out, nil
}

// Pick assigns proxies round-robin: wallet i gets list[i mod len(list)].
func Pick(list []string, i int) string {
	if len(list) == 0 || i < 0 {
		return ""
	}
	return list[i%len(list)]
}
