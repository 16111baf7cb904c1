package authqrgo

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"

	"github.com/authqr/operator/pkg/authqrgo/credentials"
	"github.com/authqr/operator/pkg/authqrgo/routing"
)

type ClientOpts struct {
	BaseURL     string
	Credentials *credentials.Credentials
	Timeout     time.Duration
}

// Client talks to the identity backend. Gated endpoints read the bearer
// token from Credentials at request time.
type Client struct {
	Logger      zerolog.Logger
	credentials *credentials.Credentials
	baseURL     string
	http        *http.Client
	httpProxy   func(*http.Request) (*url.URL, error)
	socksProxy  proxy.Dialer
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 40 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: timeout,
	}
}

func NewClient(opts *ClientOpts, logger zerolog.Logger) *Client {
	cli := Client{
		http:    newHTTPClient(opts.Timeout),
		Logger:  logger,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}

	if cli.baseURL == "" {
		cli.baseURL = routing.DefaultAPIBaseURL
	}

	if opts.Credentials != nil {
		cli.credentials = opts.Credentials
	} else {
		cli.credentials = credentials.NewCredentials()
	}

	return &cli
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Credentials() *credentials.Credentials {
	return c.credentials
}

func (c *Client) SetProxy(proxyAddr string) error {
	return setProxy(c.http, proxyAddr, &c.httpProxy, &c.socksProxy, c.Logger)
}

func setProxy(httpClient *http.Client, proxyAddr string, httpProxy *func(*http.Request) (*url.URL, error), socksProxy *proxy.Dialer, log zerolog.Logger) error {
	proxyParsed, err := url.Parse(proxyAddr)
	if err != nil {
		return err
	}

	transport := httpClient.Transport.(*http.Transport)
	if proxyParsed.Scheme == "http" || proxyParsed.Scheme == "https" {
		*httpProxy = http.ProxyURL(proxyParsed)
		transport.Proxy = *httpProxy
	} else if proxyParsed.Scheme == "socks5" {
		*socksProxy, err = proxy.FromURL(proxyParsed, &net.Dialer{Timeout: 20 * time.Second})
		if err != nil {
			return err
		}
		dialer := *socksProxy
		transport.DialContext = func(ctx context.Context, network string, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
		contextDialer, ok := dialer.(proxy.ContextDialer)
		if ok {
			transport.DialContext = contextDialer.DialContext
		}
	} else {
		return fmt.Errorf("unsupported proxy scheme %q", proxyParsed.Scheme)
	}

	log.Debug().
		Str("scheme", proxyParsed.Scheme).
		Str("host", proxyParsed.Host).
		Msg("Using proxy")
	return nil
}
