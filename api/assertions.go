package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ResponseTimeHeader is the server-reported response time in milliseconds.
const ResponseTimeHeader = "X-Response-Time"

func (c *Client) AssertStatusCode(r *Response, expected int) {
	require.Equal(c.t, expected, r.StatusCode, "Expected status %d but got %d", expected, r.StatusCode)
	c.log.Info(fmt.Sprintf("Status code assertion passed: %d", r.StatusCode))
}

// AssertResponseContains checks each expected top-level field of the JSON body, in sorted key
// order, and fails on the first mismatch. A missing field compares equal to nil.
func (c *Client) AssertResponseContains(r *Response, expected map[string]interface{}) {
	if !json.Valid(r.Body) {
		require.Fail(c.t, "response body is not valid JSON", "body: %s", r.Text())
	}
	body := ldvalue.Parse(r.Body)

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		want := ldvalue.CopyArbitraryValue(expected[k])
		got := body.GetByKey(k)
		if !got.Equal(want) {
			require.Fail(c.t, fmt.Sprintf("response field %q: expected %s but got %s", k, want.JSONString(), got.JSONString()))
		}
	}
	c.log.Info("Response data assertion passed")
}

// AssertResponseTime fails if the server-reported response time exceeds maxMillis. It does
// nothing when the header is absent, does not start with a number, or is not positive.
func (c *Client) AssertResponseTime(r *Response, maxMillis int) {
	responseTime := leadingInt(r.Header.Get(ResponseTimeHeader))
	if responseTime <= 0 {
		return
	}
	require.LessOrEqual(c.t, responseTime, maxMillis,
		"Response time %dms exceeds maximum %dms", responseTime, maxMillis)
	c.log.Info(fmt.Sprintf("Response time assertion passed: %dms <= %dms", responseTime, maxMillis))
}

// leadingInt parses the digits at the start of s. A value too large for an int saturates at
// math.MaxInt so it still fails any limit.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return n
}

// AssertJSONPath evaluates a jq expression against the JSON body and checks its first result.
func (c *Client) AssertJSONPath(r *Response, expr string, expected interface{}) {
	query, err := gojq.Parse(expr)
	require.NoError(c.t, err, "failed to parse JSON path %s", expr)

	var data interface{}
	require.NoError(c.t, json.Unmarshal(r.Body, &data), "response body is not valid JSON")

	iter := query.Run(data)
	actual, ok := iter.Next()
	if !ok {
		require.Fail(c.t, fmt.Sprintf("JSON path %s returned no results", expr))
	}
	if err, isErr := actual.(error); isErr {
		require.Fail(c.t, fmt.Sprintf("error evaluating JSON path %s: %s", expr, err))
	}
	want := ldvalue.CopyArbitraryValue(expected)
	got := ldvalue.CopyArbitraryValue(actual)
	if !got.Equal(want) {
		require.Fail(c.t, fmt.Sprintf("JSON path assertion failed for %s: expected %s, got %s", expr, want.JSONString(), got.JSONString()))
	}
	c.log.Info(fmt.Sprintf("JSON path assertion passed: %s", expr))
}

// AssertJSONSchema validates the body against a JSON schema document.
func (c *Client) AssertJSONSchema(r *Response, schema string) {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(r.Body))
	require.NoError(c.t, err, "failed to validate schema")
	if !result.Valid() {
		var msg strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&msg, "- %s\n", desc)
		}
		require.Fail(c.t, "schema validation failed:\n"+msg.String())
	}
	c.log.Info("JSON schema assertion passed")
}
