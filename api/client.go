// Package api is an HTTP client for API tests. Its assertion helpers fail the owning test
// through require.TestingT.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/hemantjanrao/playwrightFW/logging"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
	contentTypeForm     = "application/x-www-form-urlencoded"

	DefaultRequestTimeout = 30 * time.Second
)

// RequestOptions are the optional parts of a request. Data is sent as the body: strings and
// byte slices as they are, anything else JSON-encoded. Form, if set, replaces Data with a
// URL-encoded form.
type RequestOptions struct {
	Headers map[string]string        `json:"headers,omitempty"`
	Data    interface{}              `json:"data,omitempty"`
	Params  map[string]ldvalue.Value `json:"params,omitempty"`
	Form    map[string]string        `json:"form,omitempty"`
}

func (o RequestOptions) isEmpty() bool {
	return len(o.Headers) == 0 && o.Data == nil && len(o.Params) == 0 && len(o.Form) == 0
}

// Client sends requests relative to a base URL. It keeps cookies between requests, so a login
// call establishes a session for the calls that follow it.
type Client struct {
	ctx     context.Context
	baseURL *url.URL
	http    *http.Client
	t       require.TestingT
	log     *logging.Logger

	lock      sync.Mutex
	authToken string
}

func NewClient(ctx context.Context, baseURL string, t require.TestingT, log *logging.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if base.Path != "" && !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return &Client{
		ctx:     ctx,
		baseURL: base,
		http:    &http.Client{Jar: jar, Timeout: DefaultRequestTimeout},
		t:       t,
		log:     log,
	}, nil
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.Timeout = timeout
}

func (c *Client) SetAuthToken(token string) {
	c.lock.Lock()
	c.authToken = token
	c.lock.Unlock()
	c.log.Info("Authentication token set")
}

func (c *Client) ClearAuthToken() {
	c.lock.Lock()
	c.authToken = ""
	c.lock.Unlock()
	c.log.Info("Authentication token cleared")
}

func (c *Client) HasAuthToken() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.authToken != ""
}

func (c *Client) Get(target string, opts RequestOptions) (*Response, error) {
	return c.do(http.MethodGet, target, opts)
}

func (c *Client) Post(target string, opts RequestOptions) (*Response, error) {
	return c.do(http.MethodPost, target, opts)
}

func (c *Client) Put(target string, opts RequestOptions) (*Response, error) {
	return c.do(http.MethodPut, target, opts)
}

func (c *Client) Delete(target string, opts RequestOptions) (*Response, error) {
	return c.do(http.MethodDelete, target, opts)
}

// headers builds the request headers: the JSON content type, then the bearer token if one is
// set, then the per-call headers, each layer overriding the one before.
func (c *Client) headers(opts RequestOptions) http.Header {
	h := make(http.Header)
	h.Set(headerContentType, contentTypeJSON)
	c.lock.Lock()
	if c.authToken != "" {
		h.Set(headerAuthorization, "Bearer "+c.authToken)
	}
	c.lock.Unlock()
	callerSetContentType := false
	for k, v := range opts.Headers {
		if http.CanonicalHeaderKey(k) == headerContentType {
			callerSetContentType = true
		}
		h.Set(k, v)
	}
	if opts.Form != nil && !callerSetContentType {
		h.Set(headerContentType, contentTypeForm)
	}
	return h
}

func (c *Client) resolve(target string, params map[string]ldvalue.Value) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid request URL %q: %w", target, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, paramString(v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func paramString(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.StringType:
		return v.StringValue()
	case ldvalue.NumberType:
		if v.IsInt() {
			return strconv.Itoa(v.IntValue())
		}
		return strconv.FormatFloat(v.Float64Value(), 'f', -1, 64)
	case ldvalue.NullType:
		return ""
	default:
		return v.JSONString()
	}
}

func encodeBody(opts RequestOptions) (io.Reader, error) {
	if opts.Form != nil {
		form := make(url.Values)
		for k, v := range opts.Form {
			form.Set(k, v)
		}
		return strings.NewReader(form.Encode()), nil
	}
	switch data := opts.Data.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(data), nil
	case []byte:
		return bytes.NewReader(data), nil
	default:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(encoded), nil
	}
}

func (c *Client) do(method, target string, opts RequestOptions) (*Response, error) {
	if opts.isEmpty() {
		c.log.Info(fmt.Sprintf("%s request to: %s", method, target))
	} else {
		c.log.Info(fmt.Sprintf("%s request to: %s", method, target), opts)
	}

	u, err := c.resolve(target, opts.Params)
	if err != nil {
		return nil, err
	}
	body, err := encodeBody(opts)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(c.ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header = c.headers(opts)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, u, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response body: %w", method, u, err)
	}
	r := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Duration:   time.Since(start),
		URL:        u,
	}
	c.log.Info(fmt.Sprintf("%s response status: %d", method, r.StatusCode))
	return r, nil
}
