package cybersource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCardTypeSlug(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"001", "visa"},
		{"002", "mastercard"},
		{"003", "american_express"},
		{"004", "discover"},
		{"042", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CardTypeSlug(tt.code), "code %q", tt.code)
	}
}
