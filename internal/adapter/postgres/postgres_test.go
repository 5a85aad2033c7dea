package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSSLMode(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "explicit require", url: "postgres://u:p@host:5432/db?sslmode=require", want: "require"},
		{name: "explicit disable", url: "postgres://u:p@host:5432/db?sslmode=disable", want: "disable"},
		{name: "uppercase normalised", url: "postgres://u:p@host:5432/db?sslmode=VERIFY-FULL", want: "verify-full"},
		{name: "absent", url: "postgres://u:p@host:5432/db", want: "prefer (default)"},
		{name: "unparseable", url: "://not-a-url", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSSLMode(tt.url))
		})
	}
}
