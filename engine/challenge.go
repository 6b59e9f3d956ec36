package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/publicsuffix"
)

// ChallengeEngine is a cookie-keeping client that re-issues a request
// after the origin answers with an interstitial. Clearance cookies set by
// the interstitial are replayed on the retry. Each Fetch starts with an
// empty jar.
type ChallengeEngine struct {
	transport http.RoundTripper
	delay     time.Duration
	userAgent string
	timeout   time.Duration
}

// NewChallengeEngine creates the challenge-aware engine. delay is the fixed
// wait before each retry; timeout bounds the whole exchange.
func NewChallengeEngine(timeout, delay time.Duration) *ChallengeEngine {
	return &ChallengeEngine{
		transport: newImpersonatingTransport(Chrome120.Hello),
		delay:     delay,
		userAgent: Chrome120.UserAgent,
		timeout:   timeout,
	}
}

// newClient builds a retrying client around a fresh cookie jar.
func (e *ChallengeEngine) newClient() *retryablehttp.Client {
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: e.transport, Jar: jar}
	rc.RetryMax = 2
	rc.RetryWaitMin = e.delay
	rc.RetryWaitMax = e.delay
	rc.Backoff = func(min, _ time.Duration, _ int, _ *http.Response) time.Duration { return min }
	rc.CheckRetry = challengeRetryPolicy
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = slog.Default()
	return rc
}

func (e *ChallengeEngine) Name() string { return "challenge" }

func (e *ChallengeEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", e.Name(), err)
	}
	applyHeaders(httpReq.Header, e.userAgent, req.Headers)

	resp, err := e.newClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", e.Name(), err)
	}
	defer resp.Body.Close()

	return collect(e.Name(), resp)
}

func challengeRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return isChallengeResponse(resp), nil
}

// isChallengeResponse reports whether resp looks like an anti-bot
// interstitial that may clear on a second request.
func isChallengeResponse(resp *http.Response) bool {
	if strings.EqualFold(resp.Header.Get("cf-mitigated"), "challenge") {
		return true
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	case http.StatusForbidden:
		return strings.Contains(strings.ToLower(resp.Header.Get("Server")), "cloudflare")
	}
	return false
}
