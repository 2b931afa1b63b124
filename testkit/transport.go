// Package testkit provides canned HTTP fixtures for testing code built on
// apikit without a live server.
package testkit

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

type Route struct {
	Status int
	Body   string
	Header http.Header

	// Err simulates a transport failure: the request never reaches a
	// server and RoundTrip returns this error instead of a response.
	Err error
}

// Transport is an http.RoundTripper serving fixtures keyed by
// "METHOD /path". It records every request it sees.
type Transport struct {
	mu     sync.Mutex
	routes map[string]Route
	calls  []*http.Request
}

func New(routes map[string]Route) *Transport {
	copied := make(map[string]Route, len(routes))
	for key, route := range routes {
		copied[key] = route
	}
	return &Transport{routes: copied}
}

func (t *Transport) SetRoute(key string, route Route) {
	t.mu.Lock()
	t.routes[key] = route
	t.mu.Unlock()
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.Path
	t.mu.Lock()
	t.calls = append(t.calls, req)
	route, ok := t.routes[key]
	t.mu.Unlock()
	if !ok {
		route = Route{Status: http.StatusNotFound, Body: `{"detail":"fixture not found: ` + key + `"}`}
	}
	if route.Err != nil {
		return nil, route.Err
	}
	header := make(http.Header, len(route.Header)+1)
	for name, values := range route.Header {
		header[name] = values
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	status := route.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(route.Body)),
		Request:    req,
	}, nil
}

func (t *Transport) Calls() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*http.Request(nil), t.calls...)
}

func (t *Transport) CallCount(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, req := range t.calls {
		if req.Method+" "+req.URL.Path == key {
			count++
		}
	}
	return count
}
