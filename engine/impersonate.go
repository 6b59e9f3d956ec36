package engine

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
)

// ImpersonateEngine fetches over plain net/http while presenting the TLS
// ClientHello and User-Agent of one browser Identity.
type ImpersonateEngine struct {
	identity Identity
	client   *http.Client
	timeout  time.Duration
}

// NewImpersonateEngine creates an engine for id. timeout bounds each Fetch;
// zero means the caller's context alone applies.
func NewImpersonateEngine(id Identity, timeout time.Duration) *ImpersonateEngine {
	return &ImpersonateEngine{
		identity: id,
		timeout:  timeout,
		client: &http.Client{
			Transport: newImpersonatingTransport(id.Hello),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (e *ImpersonateEngine) Name() string { return e.identity.Name }

// Identity returns the fingerprint this engine presents.
func (e *ImpersonateEngine) Identity() Identity { return e.identity }

func (e *ImpersonateEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", e.Name(), err)
	}
	applyHeaders(httpReq.Header, e.identity.UserAgent, req.Headers)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", e.Name(), err)
	}
	defer resp.Body.Close()

	return collect(e.Name(), resp)
}

// applyHeaders sets the identity's User-Agent, then the caller's headers,
// then the encodings readBody understands.
func applyHeaders(h http.Header, userAgent string, extra map[string]string) {
	h.Set("User-Agent", userAgent)
	for k, v := range extra {
		h.Set(k, v)
	}
	h.Set("Accept-Encoding", acceptEncoding)
}

// collect turns a response into a FetchResult. Only 200 counts as success.
func collect(name string, resp *http.Response) (*FetchResult, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w %d", name, ErrStatus, resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", name, err)
	}

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		EngineName:  name,
	}, nil
}

// newImpersonatingTransport dials TLS with the given ClientHello. ALPN is
// locked to http/1.1 because http.Transport cannot speak h2 over a utls
// connection.
func newImpersonatingTransport(hello tls.ClientHelloID) *http.Transport {
	return &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialImpersonated(ctx, network, addr, hello)
		},
		ForceAttemptHTTP2:   false,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

func dialImpersonated(ctx context.Context, network, addr string, hello tls.ClientHelloID) (net.Conn, error) {
	spec, err := http1Spec(hello)
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// http1Spec builds a fresh ClientHelloSpec for hello with h2 removed from
// ALPN. Specs hold per-connection state, so one is generated per dial.
func http1Spec(hello tls.ClientHelloID) (tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(hello)
	if err != nil {
		return tls.ClientHelloSpec{}, fmt.Errorf("tls spec for %s: %w", hello.Str(), err)
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return spec, nil
}
