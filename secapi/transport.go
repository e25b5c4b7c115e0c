package secapi

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fereidani/httpdecompressor"
	"github.com/rs/dnscache"
)

const (
	defaultDialTimeout = 10 * time.Second
	defaultKeepAlive   = 30 * time.Second

	// acceptEncoding lists the encodings the decompressor understands.
	acceptEncoding = "gzip, deflate, br, zstd"
)

// dnsResolver is shared by every transport built by this package.
var dnsResolver = &dnscache.Resolver{} //nolint:gochecknoglobals

// NewTransport returns the round tripper used by clients that are not given one:
// an http.Transport dialing through a DNS cache, wrapped by a decompressor.
func NewTransport() http.RoundTripper {
	trans, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		trans = &http.Transport{}
	} else {
		trans = trans.Clone()
	}

	// Compression is negotiated explicitly and undone by the decompressor.
	trans.DisableCompression = true

	useDNSCacheDialer(trans, defaultDialTimeout, defaultKeepAlive)

	return NewDecompressor(trans)
}

// RefreshDNS periodically drops stale DNS cache entries until ctx is done.
func RefreshDNS(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dnsResolver.Refresh(true)
		}
	}
}

// useDNSCacheDialer modifies the given http.Transport to use a DNS caching dialer.
func useDNSCacheDialer(trans *http.Transport, timeout, keepAlive time.Duration) {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: keepAlive,
	}

	trans.DialContext = func(ctx context.Context, network string, addr string) (conn net.Conn, err error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}

		ips, err := dnsResolver.LookupHost(ctx, host)
		if err != nil {
			return nil, err
		}

		for _, ip := range ips {
			conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
			if err == nil {
				break
			}
		}

		return conn, err
	}
}

// NewDecompressor wraps roundTripper so that response bodies are decoded according to
// their Content-Encoding header.
func NewDecompressor(roundTripper http.RoundTripper) http.RoundTripper {
	if roundTripper == nil {
		roundTripper = http.DefaultTransport
	}

	return &decompressor{roundTripper: roundTripper}
}

type decompressor struct {
	roundTripper http.RoundTripper
}

func (d *decompressor) RoundTrip(request *http.Request) (*http.Response, error) {
	if request.Header.Get("Accept-Encoding") == "" {
		request = request.Clone(request.Context())
		request.Header.Set("Accept-Encoding", acceptEncoding)
	}

	rsp, err := d.roundTripper.RoundTrip(request)
	if err != nil {
		return rsp, err
	}

	origBody := rsp.Body

	bodyReader, err := httpdecompressor.Reader(rsp)
	if err != nil {
		_ = origBody.Close()

		return nil, err
	}

	if bodyReader == origBody {
		return rsp, nil
	}

	// The decoder is closed before the body it reads from.
	rsp.Body = &multiCloser{Reader: bodyReader, closers: []io.Closer{bodyReader, origBody}}
	rsp.Header.Del("Content-Encoding")
	rsp.Header.Del("Content-Length")
	rsp.ContentLength = -1

	return rsp, nil
}

type multiCloser struct {
	io.Reader

	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error

	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			slog.Debug("Closing response body failed", "error", err)

			if first == nil {
				first = err
			}
		}
	}

	return first
}

var _ http.RoundTripper = (*decompressor)(nil)
