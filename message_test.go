package apikit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageScenarios(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			"reply with empty object body falls back to status",
			&APIError{Status: 404, Body: []byte(`{}`)},
			"Resource not found.",
		},
		{
			"reply with string body is returned verbatim",
			&APIError{Status: 200, Body: []byte(`"Custom failure text"`)},
			"Custom failure text",
		},
		{
			"validation errors keyed by field name",
			&APIError{Status: 400, Body: []byte(`{"email":["Email is invalid"]}`)},
			"Email is invalid",
		},
		{
			"request sent but no reply",
			&RequestError{URL: "https://app.example.com/users", Err: errors.New("dial tcp: connection refused")},
			"No response from server. Please check your internet connection.",
		},
		{
			"plain string",
			"Plain string error",
			"Plain string error",
		},
		{
			"slice of message objects uses the first",
			[]any{
				map[string]any{"message": "First error"},
				map[string]any{"message": "Second error"},
			},
			"First error",
		},
		{
			"empty object",
			map[string]any{},
			"An unexpected error occurred. Please try again.",
		},
		{
			"unauthorized with null body",
			&APIError{Status: 401, Body: []byte(`null`)},
			"Unauthorized. Please log in again.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.input))
		})
	}
}

func TestMessageBodyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message beats detail", `{"detail":"from detail","message":"from message"}`, "from message"},
		{"detail when message blank", `{"message":"  ","detail":"from detail"}`, "from detail"},
		{"message array first element", `{"message":["first","second"]}`, "first"},
		{"detail string beats message array", `{"detail":"from detail","message":["first"]}`, "from detail"},
		{"non-string array element is JSON encoded", `{"message":[{"code":409}]}`, `{"code":409}`},
		{"detail array when message absent", `{"detail":["nested detail"]}`, "nested detail"},
		{"field scan skips non-strings", `{"count":3,"errors":["broken widget"]}`, "broken widget"},
		{"field scan honors document order", `{"zzz":["zed failed"],"aaa":["aye failed"]}`, "zed failed"},
		{"field scan finds bare string values", `{"username":"taken"}`, "taken"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Message(&APIError{Status: 400, Body: []byte(tc.body)})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMessageStatusFallbacks(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{401, "Unauthorized. Please log in again."},
		{403, "You do not have permission to perform this action."},
		{404, "Resource not found."},
		{500, "A server error occurred. Please try again later."},
		{418, "An error occurred. Please try again."},
		{0, "An error occurred. Please try again."},
	}
	for _, tc := range tests {
		got := Message(&APIError{Status: tc.status})
		assert.Equal(t, tc.want, got, "status %d", tc.status)
	}
}

func TestMessagePlainTextBody(t *testing.T) {
	got := Message(&APIError{Status: 502, Body: []byte("Bad gateway at the load balancer")})
	assert.Equal(t, "Bad gateway at the load balancer", got)
}

func TestMessageBlankStringBodyFallsBack(t *testing.T) {
	got := Message(&APIError{Status: 500, Body: []byte(`"   "`)})
	assert.Equal(t, "A server error occurred. Please try again later.", got)
}

func TestMessageUnwrapsWrappedErrors(t *testing.T) {
	apiErr := &APIError{Status: 403, Body: []byte(`{}`)}
	wrapped := fmt.Errorf("loading profile: %w", apiErr)
	assert.Equal(t, "You do not have permission to perform this action.", Message(wrapped))

	reqErr := fmt.Errorf("saving draft: %w", &RequestError{URL: "https://x", Err: errors.New("timeout")})
	assert.Equal(t, "No response from server. Please check your internet connection.", Message(reqErr))
}

func TestMessageFetchFailure(t *testing.T) {
	assert.Equal(t, "Network error. Please check your connection.", Message(errors.New("Failed to fetch")))
}

func TestMessagePlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

func TestMessageSlices(t *testing.T) {
	assert.Equal(t, "first", Message([]string{"first", "second"}))
	assert.Equal(t, "boom", Message([]error{errors.New("boom")}))
	assert.Equal(t, "lead", Message([]any{"lead", 2}))

	fallback := "An unexpected error occurred. Please try again."
	assert.Equal(t, fallback, Message([]any{}))
	assert.Equal(t, fallback, Message([]any{42, "ignored"}))
	assert.Equal(t, fallback, Message([]any{map[string]any{"detail": "not message"}}))
}

func TestMessageNeverEmptyAndIdempotent(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"   ",
		42,
		3.14,
		true,
		struct{ X int }{1},
		map[string]any{"message": ""},
		map[string]any{"other": "field"},
		[]any(nil),
		[]error{nil},
		(*APIError)(nil),
		(*RequestError)(nil),
		fmt.Errorf("loading profile: %w", (*APIError)(nil)),
		fmt.Errorf("saving draft: %w", (*RequestError)(nil)),
		&APIError{Status: 400, Body: []byte(`{"broken json`)},
		&APIError{Status: 503, Body: []byte(`[1,2,3]`)},
		errors.New("x"),
	}
	for _, input := range inputs {
		first := Message(input)
		assert.NotEmpty(t, first, "input %#v", input)
		assert.Equal(t, first, Message(input), "input %#v", input)
	}
}
