package apperror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUpstream_Messages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		timeout bool
		want    string
	}{
		{name: "status", status: 503, want: "upstream search returned HTTP 503"},
		{name: "timeout", timeout: true, want: "upstream search request timed out"},
		{name: "transport", want: "upstream search request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewUpstream("search", tt.status, tt.timeout)
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
			assert.Equal(t, tt.status, err.Details["status"])
			assert.Equal(t, tt.timeout, err.Details["timeout"])
		})
	}
}

func TestHelpers_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewUpstream("supplier_primary", 429, false))

	assert.True(t, IsUpstream(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, 429, UpstreamStatus(wrapped))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(wrapped))

	assert.True(t, IsValidation(NewValidation("bad")))
	assert.True(t, IsNotFound(NewNotFound("supplier", "123")))
	assert.Equal(t, 0, UpstreamStatus(NewNotFound("supplier", "123")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(fmt.Errorf("plain")))
}
