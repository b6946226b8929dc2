package api

import (
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *Response {
	return &Response{StatusCode: status, Header: make(http.Header), Body: []byte(body)}
}

func TestAssertStatusCode(t *testing.T) {
	ctx := runAssertion(func(c *Client) {
		c.AssertStatusCode(jsonResponse(200, ""), 200)
	})
	assert.False(t, ctx.Failed())

	ctx = runAssertion(func(c *Client) {
		c.AssertStatusCode(jsonResponse(404, ""), 200)
	})
	require.True(t, ctx.Failed())
	assert.Contains(t, ctx.Errors()[0].Error(), "Expected status 200 but got 404")
}

func TestAssertResponseContains(t *testing.T) {
	body := `{"id": 12212, "firstName": "John", "active": true, "address": {"city": "Beverly Hills"}, "note": null}`

	ctx := runAssertion(func(c *Client) {
		c.AssertResponseContains(jsonResponse(200, body), map[string]interface{}{
			"id":        12212,
			"firstName": "John",
			"active":    true,
			"address":   map[string]interface{}{"city": "Beverly Hills"},
			"note":      nil,
			"missing":   nil,
		})
	})
	assert.False(t, ctx.Failed(), "%v", ctx.Errors())

	ctx = runAssertion(func(c *Client) {
		c.AssertResponseContains(jsonResponse(200, body), map[string]interface{}{
			"id":        1,
			"firstName": "Jane",
		})
	})
	require.True(t, ctx.Failed())
	require.Len(t, ctx.Errors(), 1)
	assert.Contains(t, ctx.Errors()[0].Error(), `response field "firstName": expected "Jane" but got "John"`)

	ctx = runAssertion(func(c *Client) {
		c.AssertResponseContains(jsonResponse(200, "<html/>"), map[string]interface{}{"id": 1})
	})
	assert.True(t, ctx.Failed())
}

func TestAssertResponseTime(t *testing.T) {
	withHeader := func(v string) *Response {
		r := jsonResponse(200, "")
		if v != "" {
			r.Header.Set(ResponseTimeHeader, v)
		}
		return r
	}
	for _, v := range []string{"", "fast", "0", "-5", "150", "150ms"} {
		ctx := runAssertion(func(c *Client) {
			c.AssertResponseTime(withHeader(v), 500)
		})
		assert.False(t, ctx.Failed(), "header %q", v)
	}

	ctx := runAssertion(func(c *Client) {
		c.AssertResponseTime(withHeader("2500ms"), 2000)
	})
	require.True(t, ctx.Failed())
	assert.Contains(t, ctx.Errors()[0].Error(), "Response time 2500ms exceeds maximum 2000ms")
}

func TestAssertResponseTimeHugeValueFails(t *testing.T) {
	ctx := runAssertion(func(c *Client) {
		r := jsonResponse(200, "")
		r.Header.Set(ResponseTimeHeader, "99999999999999999999999999ms")
		c.AssertResponseTime(r, 2000)
	})
	assert.True(t, ctx.Failed())
}

func TestAssertJSONPath(t *testing.T) {
	body := `{"accounts": [{"id": 13344, "type": "CHECKING"}, {"id": 13455, "type": "SAVINGS"}]}`

	ctx := runAssertion(func(c *Client) {
		r := jsonResponse(200, body)
		c.AssertJSONPath(r, ".accounts[0].id", 13344)
		c.AssertJSONPath(r, ".accounts | length", 2)
		c.AssertJSONPath(r, ".accounts[1].type", "SAVINGS")
	})
	assert.False(t, ctx.Failed(), "%v", ctx.Errors())

	ctx = runAssertion(func(c *Client) {
		c.AssertJSONPath(jsonResponse(200, body), ".accounts[0].type", "SAVINGS")
	})
	require.True(t, ctx.Failed())
	assert.Contains(t, ctx.Errors()[0].Error(), `JSON path assertion failed for .accounts[0].type: expected "SAVINGS", got "CHECKING"`)

	ctx = runAssertion(func(c *Client) {
		c.AssertJSONPath(jsonResponse(200, body), ".[", 1)
	})
	assert.True(t, ctx.Failed())
}

func TestAssertJSONSchema(t *testing.T) {
	schema := `{
		"type": "object",
		"required": ["id", "firstName"],
		"properties": {"id": {"type": "integer"}, "firstName": {"type": "string"}}
	}`

	ctx := runAssertion(func(c *Client) {
		c.AssertJSONSchema(jsonResponse(200, `{"id": 1, "firstName": "John"}`), schema)
	})
	assert.False(t, ctx.Failed(), "%v", ctx.Errors())

	ctx = runAssertion(func(c *Client) {
		c.AssertJSONSchema(jsonResponse(200, `{"id": "one"}`), schema)
	})
	require.True(t, ctx.Failed())
	assert.Contains(t, ctx.Errors()[0].Error(), "schema validation failed")
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 120, leadingInt("120ms"))
	assert.Equal(t, 7, leadingInt(" 7 "))
	assert.Equal(t, 0, leadingInt("ms120"))
	assert.Equal(t, 0, leadingInt(""))
	assert.Equal(t, math.MaxInt, leadingInt("184467440737095516160"))
}
