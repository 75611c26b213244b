package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		value  int64
		want   string
	}{
		{name: "first invoice", prefix: "INV-", value: 1, want: "INV-001"},
		{name: "two digits", prefix: "INV-", value: 42, want: "INV-042"},
		{name: "exactly three digits", prefix: "INV-", value: 999, want: "INV-999"},
		{name: "wider than padding", prefix: "INV-", value: 1500, want: "INV-1500"},
		{name: "empty prefix", prefix: "", value: 7, want: "007"},
		{name: "custom prefix", prefix: "ACME/2026/", value: 12, want: "ACME/2026/012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.prefix, tt.value))
		})
	}
}
