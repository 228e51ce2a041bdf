package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Joe's Pizza", "joe-s-pizza"},
		{"  Café   Olé ", "cafe-ole"},
		{"Bäckerei Müller", "baeckerei-mueller"},
		{"Salt & Pepper", "salt-and-pepper"},
		{"---", ""},
		{"Downtown / Riverside", "downtown-riverside"},
	}
	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Fatalf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{"plumber": true, "plumber-2": true}
	got, err := Unique("plumber", func(c string) (bool, error) { return taken[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "plumber-3", got)

	got, err = Unique("", func(c string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Equal(t, "item", got)
}
