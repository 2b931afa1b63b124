package apikit

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

const (
	msgNoResponse = "No response from server. Please check your internet connection."
	msgNetwork    = "Network error. Please check your connection."
	msgFallback   = "An unexpected error occurred. Please try again."
)

// Message translates any value produced by a failed request into text fit
// for direct display. It never panics and never returns an empty string.
// Rules are tried in order and the first match wins:
//
//  1. a reply was received (*APIError): body text, then well-known body
//     fields, then a status-code fallback
//  2. the request went out but nothing came back (*RequestError)
//  3. the platform-level fetch failure ("Failed to fetch", which the
//     js/wasm transport surfaces verbatim)
//  4. a plain non-blank string
//  5. anything exposing a message (an error, or a decoded JSON object
//     with a "message" field)
//  6. the first element of a non-empty slice
//  7. a generic fallback
func Message(v any) string {
	switch val := v.(type) {
	case *APIError:
		if val != nil {
			return replyMessage(val)
		}
	case *RequestError:
		if val != nil {
			return msgNoResponse
		}
	case error:
		if val == nil {
			break
		}
		var apiErr *APIError
		if errors.As(val, &apiErr) && apiErr != nil {
			return replyMessage(apiErr)
		}
		var reqErr *RequestError
		if errors.As(val, &reqErr) && reqErr != nil {
			return msgNoResponse
		}
		if val.Error() == "Failed to fetch" {
			return msgNetwork
		}
		if strings.TrimSpace(val.Error()) != "" {
			return val.Error()
		}
	case string:
		if strings.TrimSpace(val) != "" {
			return val
		}
	case map[string]any:
		if msg, ok := stringField(val, "message"); ok {
			return msg
		}
	case []any:
		if len(val) > 0 {
			if msg, ok := elementMessage(val[0]); ok {
				return msg
			}
		}
	case []string:
		if len(val) > 0 && strings.TrimSpace(val[0]) != "" {
			return val[0]
		}
	case []error:
		if len(val) > 0 {
			if msg, ok := elementMessage(val[0]); ok {
				return msg
			}
		}
	}
	return msgFallback
}

// replyMessage resolves display text for a reply the server actually sent.
// Body precedence: string payload verbatim, then message/detail strings,
// then message/detail arrays, then a field scan, then the status code.
func replyMessage(e *APIError) string {
	body := bytes.TrimSpace(e.Body)
	if len(body) > 0 {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			// not JSON at all, some servers reply with bare text
			return string(body)
		}
		switch data := decoded.(type) {
		case string:
			if strings.TrimSpace(data) != "" {
				return data
			}
		case map[string]any:
			if msg, ok := bodyMessage(data, body); ok {
				return msg
			}
		}
	}
	return statusMessage(e.Status)
}

func bodyMessage(data map[string]any, raw []byte) (string, bool) {
	for _, field := range []string{"message", "detail"} {
		if s, ok := data[field].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	for _, field := range []string{"message", "detail"} {
		if list, ok := data[field].([]any); ok && len(list) > 0 {
			if s := stringify(list[0]); strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	// validation shape: {"email": ["Email is invalid"], ...}. Walk the
	// reply in its own key order, flattening one level of arrays, and take
	// the first non-blank string.
	for _, field := range bodyValues(raw) {
		var value any
		if json.Unmarshal(field, &value) != nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v, true
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					return s, true
				}
			}
		}
	}
	return "", false
}

// bodyValues returns the object's field values in document order. The scan
// above depends on that order as its tie-break, and Go maps randomize it.
func bodyValues(raw []byte) []json.RawMessage {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	var values []json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return values
		}
		if _, ok := keyTok.(string); !ok {
			return values
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return values
		}
		values = append(values, value)
	}
	return values
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

func stringField(data map[string]any, key string) (string, bool) {
	if s, ok := data[key].(string); ok && strings.TrimSpace(s) != "" {
		return s, true
	}
	return "", false
}

func elementMessage(first any) (string, bool) {
	switch elem := first.(type) {
	case string:
		if strings.TrimSpace(elem) != "" {
			return elem, true
		}
	case map[string]any:
		return stringField(elem, "message")
	case error:
		if elem != nil && strings.TrimSpace(elem.Error()) != "" {
			return elem.Error(), true
		}
	}
	return "", false
}
