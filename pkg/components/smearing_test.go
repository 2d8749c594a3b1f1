package components_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/components"
	"github.com/askiada/go-jobopts/pkg/units"
)

func TestFlatFromGauss(t *testing.T) {
	t.Parallel()

	gauss := &components.GaussSmearVertex{
		XVertexSigma: units.MustParse("0.5 mm"),
		YVertexSigma: units.MustParse("0.5 mm"),
		ZVertexSigma: units.MustParse("40 mm"),
		TVertexSigma: units.MustParse("180 ps"),
	}

	flat, err := components.FlatFromGauss(gauss)
	require.NoError(t, err)

	assert.Equal(t, units.New(-1, units.Millimeter), flat.XVertexMin)
	assert.Equal(t, units.New(1, units.Millimeter), flat.XVertexMax)
	assert.Equal(t, units.New(-1, units.Millimeter), flat.YVertexMin)
	assert.Equal(t, units.New(1, units.Millimeter), flat.YVertexMax)
	assert.Equal(t, units.New(-80, units.Millimeter), flat.ZVertexMin)
	assert.Equal(t, units.New(80, units.Millimeter), flat.ZVertexMax)
	assert.Nil(t, flat.BeamDirection)

	_, err = flat.Build("")
	require.NoError(t, err)
}

func TestFlatFromGaussWithMean(t *testing.T) {
	t.Parallel()

	gauss := &components.GaussSmearVertex{
		ZVertexMean:  units.MustParse("10 mm"),
		ZVertexSigma: units.MustParse("2 mm"),
	}

	flat, err := components.FlatFromGauss(gauss)
	require.NoError(t, err)

	assert.True(t, flat.ZVertexMin.Equal(units.MustParse("6 mm")), flat.ZVertexMin.String())
	assert.True(t, flat.ZVertexMax.Equal(units.MustParse("14 mm")), flat.ZVertexMax.String())
	assert.True(t, flat.XVertexMin.IsZero())

	_, err = components.FlatFromGauss(&components.GaussSmearVertex{
		XVertexMean:  units.MustParse("1 ns"),
		XVertexSigma: units.MustParse("1 mm"),
	})
	assert.ErrorIs(t, err, units.ErrDimensionMismatch)
}
