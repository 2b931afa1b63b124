package apikit

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// FeedEvent is one message from the live invalidation feed.
type FeedEvent struct {
	Type   string   `json:"type"`
	Keys   []string `json:"keys,omitempty"`
	Prefix string   `json:"prefix,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Listen consumes the invalidation feed until ctx is canceled, dropping
// cached queries as the server announces changes. ws:// and wss:// URLs
// use a websocket; anything else is read as a text/event-stream response.
// Dropped connections are retried with capped backoff.
func (c *Client) Listen(ctx context.Context, feedURL string) error {
	backoff := time.Second
	for {
		err := c.listenOnce(ctx, feedURL)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("live feed disconnected", zap.String("url", feedURL), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) listenOnce(ctx context.Context, feedURL string) error {
	if strings.HasPrefix(feedURL, "ws://") || strings.HasPrefix(feedURL, "wss://") {
		return c.listenWebsocket(ctx, feedURL)
	}
	return c.listenStream(ctx, feedURL)
}

func (c *Client) listenWebsocket(ctx context.Context, feedURL string) error {
	conn, _, err := websocket.Dial(ctx, feedURL, &websocket.DialOptions{
		HTTPClient: c.streamClient(),
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	for {
		var event FeedEvent
		if err := wsjson.Read(ctx, conn, &event); err != nil {
			return err
		}
		c.applyEvent(ctx, event)
	}
}

func (c *Client) listenStream(ctx context.Context, feedURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(feedURL), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.streamClient().Do(req)
	if err != nil {
		return &RequestError{URL: feedURL, Err: err}
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return &APIError{Status: resp.StatusCode, Body: body, Header: resp.Header}
	}
	for event := range streamEvents(ctx, resp.Body) {
		var feed FeedEvent
		if err := json.Unmarshal([]byte(event.Data), &feed); err != nil {
			c.logger.Debug("live feed: skipping malformed event", zap.Error(err))
			continue
		}
		c.applyEvent(ctx, feed)
	}
	return ctx.Err()
}

// streamClient strips the overall request timeout, which would kill a
// long-lived feed, but keeps the jar so the feed is authenticated.
func (c *Client) streamClient() *http.Client {
	return &http.Client{
		Transport: c.http.Transport,
		Jar:       c.http.Jar,
	}
}

func (c *Client) applyEvent(ctx context.Context, event FeedEvent) {
	switch event.Type {
	case "invalidate":
		if len(event.Keys) > 0 {
			c.Invalidate(ctx, event.Keys...)
		}
		if event.Prefix != "" {
			c.InvalidatePrefix(ctx, event.Prefix)
		}
	case "notice":
		if strings.TrimSpace(event.Text) != "" {
			c.notifier.Notify(LevelInfo, event.Text)
		}
	default:
		c.logger.Debug("live feed: unknown event type", zap.String("type", event.Type))
	}
}

type streamEvent struct {
	Name string
	Data string
}

func streamEvents(ctx context.Context, body io.ReadCloser) <-chan streamEvent {
	ch := make(chan streamEvent)
	go func() {
		defer close(ch)
		defer body.Close()
		reader := bufio.NewReader(body)
		var name string
		var data strings.Builder
		emit := func() {
			if data.Len() == 0 {
				return
			}
			select {
			case ch <- streamEvent{Name: name, Data: strings.TrimSpace(data.String())}:
			case <-ctx.Done():
			}
			name = ""
			data.Reset()
		}
		for {
			if ctx.Err() != nil {
				return
			}
			line, err := reader.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				name = strings.TrimSpace(line[len("event:"):])
			case strings.HasPrefix(line, "data:"):
				data.WriteString(strings.TrimSpace(line[len("data:"):]))
				data.WriteByte('\n')
			case line == "":
				emit()
			}
			if err != nil {
				emit()
				return
			}
		}
	}()
	return ch
}
