package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want *float64
	}{
		{"plain", "1.5", numPtr(1.5)},
		{"currency formatted", "$1,234.50", numPtr(1234.5)},
		{"accounting negative", "(123.45)", numPtr(-123.45)},
		{"currency accounting negative", "($2,000.00)", numPtr(-2000)},
		{"zero", "0", numPtr(0)},
		{"padded", "  42  ", numPtr(42)},
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"text", "n/a", nil},
		{"bare parens", "()", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coerceNumber(tt.cell)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCoerceBool(t *testing.T) {
	truthy := []string{"true", "TRUE", "1", "yes", " Yes "}
	for _, cell := range truthy {
		got := coerceBool(cell)
		require.NotNil(t, got, "cell %q", cell)
		assert.True(t, *got, "cell %q", cell)
	}

	falsy := []string{"false", "FALSE", "0", "no", " No "}
	for _, cell := range falsy {
		got := coerceBool(cell)
		require.NotNil(t, got, "cell %q", cell)
		assert.False(t, *got, "cell %q", cell)
	}

	for _, cell := range []string{"", "maybe", "2", "y"} {
		assert.Nil(t, coerceBool(cell), "cell %q", cell)
	}
}

func TestCoerceText(t *testing.T) {
	assert.Nil(t, coerceText(""))
	assert.Nil(t, coerceText("   "))

	got := coerceText("  hello  ")
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

func TestCoerceList(t *testing.T) {
	assert.Equal(t, []string{"FVG", "OB"}, coerceList("FVG; OB ;;"))
	assert.Equal(t, []string{"single"}, coerceList("single"))
	assert.Nil(t, coerceList(""))
	assert.Nil(t, coerceList(" ; ; "))
}

func TestCoerceDirection(t *testing.T) {
	require.NotNil(t, coerceDirection(" LONG "))
	assert.Equal(t, "long", *coerceDirection(" LONG "))
	assert.Equal(t, "short", *coerceDirection("Short"))
	assert.Nil(t, coerceDirection("buy"))
	assert.Nil(t, coerceDirection(""))
}
