package envpath_test

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-jobopts/pkg/envpath"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		env      map[string]string
		fragment string
		opts     []envpath.Option
		want     string
	}{
		"plain":              {env: map[string]string{"K4GEN": "/opt/k4gen"}, fragment: "Pythia_standard.cmd", want: "/opt/k4gen/Pythia_standard.cmd"},
		"trailing separator": {env: map[string]string{"K4GEN": "/opt/k4gen/"}, fragment: "Pythia_standard.cmd", want: "/opt/k4gen/Pythia_standard.cmd"},
		"nested fragment":    {env: map[string]string{"K4GEN": "/opt/k4gen"}, fragment: "../options/mdi.dat", want: "/opt/options/mdi.dat"},
		"fragment dir slash": {env: map[string]string{"K4GEN": "/opt/k4gen"}, fragment: "data/", want: "/opt/k4gen/data"},
		"empty value":        {env: map[string]string{"K4GEN": ""}, fragment: "Pythia_standard.cmd", want: "Pythia_standard.cmd"},
		"default":            {env: map[string]string{}, fragment: "Pythia_standard.cmd", opts: []envpath.Option{envpath.WithDefault("")}, want: "Pythia_standard.cmd"},
		"default ignored":    {env: map[string]string{"K4GEN": "/a"}, fragment: "b", opts: []envpath.Option{envpath.WithDefault("/c")}, want: "/a/b"},
	}

	for name, tc := range tcs {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			opts := append([]envpath.Option{envpath.WithLookup(envpath.Map(tc.env))}, tc.opts...)
			got, err := envpath.Resolve("K4GEN", tc.fragment, opts...)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tc.want), got)
		})
	}
}

func TestResolveSeparatorIndependence(t *testing.T) {
	t.Parallel()

	withSlash, err := envpath.Resolve("D", "f.cmd", envpath.WithLookup(envpath.Map(map[string]string{"D": "/x/y/"})))
	require.NoError(t, err)
	withoutSlash, err := envpath.Resolve("D", "f.cmd", envpath.WithLookup(envpath.Map(map[string]string{"D": "/x/y"})))
	require.NoError(t, err)

	assert.Equal(t, withSlash, withoutSlash)
	assert.Equal(t, filepath.Join("/x/y", "f.cmd"), withSlash)
}

func TestResolveMissing(t *testing.T) {
	t.Parallel()

	_, err := envpath.Resolve("K4GEN", "Pythia_standard.cmd", envpath.WithLookup(envpath.Map(nil)))
	require.ErrorIs(t, err, envpath.ErrMissingEnvironment)

	var missing *envpath.MissingEnvironmentError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "K4GEN", missing.Var)
	assert.Equal(t, "missing environment variable K4GEN", err.Error())
}

func TestResolveProcessEnvironment(t *testing.T) {
	t.Setenv("JOBOPTS_TEST_DIR", "/data")

	got, err := envpath.Resolve("JOBOPTS_TEST_DIR", "geo.xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "geo.xml"), got)
}
