package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/hemantjanrao/playwrightFW/framework"
)

func newTestClient(t require.TestingT, baseURL string) *Client {
	c, err := NewClient(context.Background(), baseURL, t, nil)
	require.NoError(t, err)
	return c
}

func receive(t *testing.T, ch <-chan httphelpers.HTTPRequestInfo) httphelpers.HTTPRequestInfo {
	select {
	case r := <-ch:
		return r
	default:
		require.Fail(t, "no request was received")
		return httphelpers.HTTPRequestInfo{}
	}
}

func TestDefaultHeaders(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL)
		resp, err := c.Get("/bank/getBankInfo", RequestOptions{})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		r := receive(t, requestsCh)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, "", r.Request.Header.Get("Authorization"))
		assert.Equal(t, "/bank/getBankInfo", r.Request.URL.Path)
	})
}

func TestAuthTokenAndOverrides(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL)
		c.SetAuthToken("abc")
		assert.True(t, c.HasAuthToken())

		_, err := c.Get("/a", RequestOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", receive(t, requestsCh).Request.Header.Get("Authorization"))

		_, err = c.Get("/a", RequestOptions{Headers: map[string]string{
			"authorization": "Basic xyz",
			"Content-Type":  "text/plain",
			"X-Trace":       "1",
		}})
		require.NoError(t, err)
		r := receive(t, requestsCh)
		assert.Equal(t, "Basic xyz", r.Request.Header.Get("Authorization"))
		assert.Equal(t, "text/plain", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, "1", r.Request.Header.Get("X-Trace"))

		c.ClearAuthToken()
		assert.False(t, c.HasAuthToken())
		_, err = c.Get("/a", RequestOptions{})
		require.NoError(t, err)
		assert.Equal(t, "", receive(t, requestsCh).Request.Header.Get("Authorization"))
	})
}

func TestFormAndParams(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(200))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL+"/parabank")
		_, err := c.Post("login.htm", RequestOptions{
			Form: map[string]string{"username": "john", "password": "demo"},
			Params: map[string]ldvalue.Value{
				"page":  ldvalue.Int(2),
				"ratio": ldvalue.Float64(0.5),
				"q":     ldvalue.String("a b"),
			},
		})
		require.NoError(t, err)

		r := receive(t, requestsCh)
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "/parabank/login.htm", r.Request.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, "password=demo&username=john", string(r.Body))
		q := r.Request.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "0.5", q.Get("ratio"))
		assert.Equal(t, "a b", q.Get("q"))
	})
}

func TestJSONBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(201))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL)
		_, err := c.Put("/customers/1", RequestOptions{Data: map[string]interface{}{"firstName": "John"}})
		require.NoError(t, err)
		r := receive(t, requestsCh)
		assert.Equal(t, "PUT", r.Request.Method)
		assert.JSONEq(t, `{"firstName":"John"}`, string(r.Body))

		_, err = c.Delete("/customers/1", RequestOptions{Data: "raw"})
		require.NoError(t, err)
		r = receive(t, requestsCh)
		assert.Equal(t, "DELETE", r.Request.Method)
		assert.Equal(t, "raw", string(r.Body))
	})
}

func TestLoginCookieIsKept(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login.htm", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "s1", Path: "/"})
		w.WriteHeader(200)
	})
	mux.HandleFunc("/overview.htm", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("JSESSIONID"); err == nil && ck.Value == "s1" {
			_, _ = io.WriteString(w, "welcome")
			return
		}
		w.WriteHeader(401)
	})
	httphelpers.WithServer(mux, func(server *httptest.Server) {
		c := newTestClient(t, server.URL)
		_, err := c.Post("/login.htm", RequestOptions{Form: map[string]string{"username": "john"}})
		require.NoError(t, err)
		resp, err := c.Get("/overview.htm", RequestOptions{})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "welcome", resp.Text())
	})
}

func TestDecodeJSON(t *testing.T) {
	type bankInfo struct {
		Name string `json:"name"`
	}
	handler := httphelpers.HandlerWithJSONResponse(map[string]string{"name": "ParaBank"}, nil)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL)
		resp, err := c.Get("/", RequestOptions{})
		require.NoError(t, err)
		info, err := DecodeJSON[bankInfo](resp)
		require.NoError(t, err)
		assert.Equal(t, "ParaBank", info.Name)

		_, err = DecodeJSON[bankInfo](&Response{Body: []byte("<html>")})
		assert.Error(t, err)
	})
}

func TestRequestFailureIsReturned(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Get("/", RequestOptions{})
	assert.Error(t, err)
}

func TestBadBaseURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad", nil, nil)
	assert.Error(t, err)
}

// runAssertion runs fn against a client owned by a fresh test context and returns that context.
func runAssertion(fn func(c *Client)) *framework.Context {
	ctx := framework.NewContext(context.Background(), framework.TestID{Suite: "api", Title: "assertion"}, nil)
	ctx.Run(func(tc *framework.Context) {
		c, err := NewClient(context.Background(), "http://localhost", tc, nil)
		require.NoError(tc, err)
		fn(c)
	})
	return ctx
}
