package zen_test

import (
	"testing"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "https with port and slash", input: "https://myhost:8080/", expected: "https://myhost:8080"},
		{name: "http", input: "http://localhost", expected: "http://localhost"},
		{name: "several slashes", input: "http://localhost:8237///", expected: "http://localhost:8237"},
		{name: "path kept", input: "https://zen.example.com/api", expected: "https://zen.example.com/api"},
		{name: "no scheme", input: "myhost:8080", wantErr: true},
		{name: "other scheme", input: "ftp://myhost", wantErr: true},
		{name: "uppercase scheme", input: "HTTPS://myhost", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := zen.ValidateURL(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, zen.ErrInvalidURL)
				assert.Contains(t, err.Error(), "https://hostname[:port]")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
