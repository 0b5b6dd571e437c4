package docx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCentimetersRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cm   float64
	}{
		{name: "row height", cm: 0.37},
		{name: "column width", cm: 2.3},
		{name: "one centimeter", cm: 1.0},
		{name: "small value", cm: 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Centimeters(tt.cm).Centimeters()
			require.LessOrEqual(t, math.Abs(got-tt.cm), 0.01)
		})
	}
}

func TestEMUIsSet(t *testing.T) {
	t.Parallel()

	require.False(t, EMU(0).IsSet())
	require.True(t, Centimeters(0.37).IsSet())
}

func TestEMUPerInch(t *testing.T) {
	t.Parallel()

	require.Equal(t, EMU(914400), EMUPerInch)
	require.Equal(t, EMU(360000), EMUPerCentimeter)
}
