// Package httpclient implements the HTTP Client (§4.4): a single-GET
// client with a fixed User-Agent, forced HTTP/1.1, redirect-downgrade
// refusal, configurable TLS verification, and a 30s inactivity watchdog.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/yuanquanya/netmc-launcher/internal/mirror"
)

const (
	userAgent        = "netmc-launcher/1.0"
	inactivityWindow = 30 * time.Second
)

// Config selects which upstream hosts may skip TLS peer verification.
// Per spec.md §9 the bypass is reserved for mirror hosts; the canonical
// upstream hosts verify normally.
type Config struct {
	InsecureHosts []string
}

// Client performs watchdog-guarded GETs over a transport forced to
// HTTP/1.1.
type Client struct {
	secure   *http.Client
	insecure *http.Client
	cfg      Config
	log      hclog.Logger
}

func New(cfg Config, log hclog.Logger) *Client {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Client{
		secure:   &http.Client{Transport: newTransport(false), CheckRedirect: refuseDowngrade},
		insecure: &http.Client{Transport: newTransport(true), CheckRedirect: refuseDowngrade},
		cfg:      cfg,
		log:      log.Named("httpclient"),
	}
}

func newTransport(skipVerify bool) *http.Transport {
	return &http.Transport{
		ForceAttemptHTTP2: false,
		TLSNextProto:      map[string]func(authority string, c *tls.Conn) http.RoundTripper{},
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: skipVerify},
	}
}

func refuseDowngrade(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	if via[0].URL.Scheme == "https" && req.URL.Scheme == "http" {
		return fmt.Errorf("refusing https->http redirect downgrade to %s", req.URL)
	}
	return nil
}

// Get performs a single HTTP GET, returning the full response body.
// ok is false on any transport error or non-2xx status.
func (c *Client) Get(url string) ([]byte, bool) {
	client := c.secure
	for _, h := range c.cfg.InsecureHosts {
		if strings.Contains(url, h) {
			client = c.insecure
			break
		}
	}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		c.log.Error("build request failed", "url", url, "error", err)
		return nil, false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		c.log.Error("request failed", "url", url, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("non-2xx response", "url", url, "status", resp.StatusCode)
		return nil, false
	}

	body, err := io.ReadAll(newWatchdogReader(resp.Body, inactivityWindow))
	if err != nil {
		c.log.Error("read failed", "url", url, "error", err)
		return nil, false
	}

	return body, true
}

// GetMirrored tries url's Mirror Resolver candidates in order, returning
// the first successful response body. Metadata fetches (version index,
// per-version manifest, java runtime index) are mirror-preferred per
// spec.md §4.6/§4.9, exactly like the Concurrent Downloader's file
// fetches.
func (c *Client) GetMirrored(url string) ([]byte, bool) {
	for _, candidate := range mirror.Candidates(url) {
		if body, ok := c.Get(candidate); ok {
			return body, true
		}
	}
	return nil, false
}

// watchdogReader aborts a Read call that produces no bytes within window
// of the previous chunk, implementing the inactivity watchdog: total time
// is unbounded as long as bytes keep arriving.
type watchdogReader struct {
	r      io.Reader
	window time.Duration
}

func newWatchdogReader(r io.Reader, window time.Duration) io.Reader {
	return &watchdogReader{r: r, window: window}
}

func (w *watchdogReader) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := w.r.Read(p)
		done <- result{n, err}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-time.After(w.window):
		return 0, fmt.Errorf("inactivity watchdog: no bytes received within %s", w.window)
	}
}
