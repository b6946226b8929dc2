package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Duration is measured by the client, from sending the request to reading the whole body.
	Duration time.Duration
	URL      string
}

func (r *Response) Text() string {
	return string(r.Body)
}

// DecodeJSON parses the response body into a T.
func DecodeJSON[T any](r *Response) (T, error) {
	var out T
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return out, fmt.Errorf("response from %s is not valid JSON: %w", r.URL, err)
	}
	return out, nil
}
