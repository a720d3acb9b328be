package curves

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"algebra.mleku.dev"
)

func TestNames(t *testing.T) {
	require.Equal(t, []string{
		"bls12_377", "bls12_381", "bn254", "p256", "secp256k1", "toy101", "toy103", "toy23",
	}, Names())
}

func TestLoadAll(t *testing.T) {
	tests := []struct {
		name       string
		baseBits   int
		scalarBits int
		glv        bool
	}{
		{"bls12_377", 377, 253, true},
		{"bls12_381", 381, 255, true},
		{"bn254", 254, 254, true},
		{"p256", 256, 256, false},
		{"secp256k1", 256, 256, true},
		{"toy101", 7, 6, false},
		{"toy103", 7, 5, true},
		{"toy23", 5, 2, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Load(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.name, c.Name())
			require.Equal(t, tc.baseBits, c.BaseField().Bits())
			require.Equal(t, tc.scalarBits, c.ScalarField().Bits())
			require.Equal(t, tc.glv, c.HasEndomorphism())

			g := c.Generator()
			require.True(t, g.IsOnCurve())
			order := c.Order()
			rg := g.ScalarMul(&order)
			require.True(t, rg.IsInfinity())
		})
	}
}

func TestNameRoundTrip(t *testing.T) {
	for _, name := range Names() {
		c, err := Load(name)
		require.NoError(t, err)
		require.Equal(t, name, c.Name())

		p, err := Params(c.Name())
		require.NoError(t, err)
		again, err := algebra.NewCurve(p)
		require.NoError(t, err)
		g1, g2 := c.Generator(), again.Generator()
		require.Equal(t, g1.EncodeUncompressed(), g2.EncodeUncompressed())
		o1, o2 := c.Order(), again.Order()
		require.True(t, o1.Equal(&o2))
	}
}

func TestPresetsAreShared(t *testing.T) {
	require.Same(t, BN254(), BN254())
	require.Same(t, Toy23(), Toy23())
	require.NotSame(t, BN254(), BLS12381())
}

func TestUnknownCurve(t *testing.T) {
	_, err := Params("ed25519")
	require.True(t, errors.Is(err, ErrUnknownCurve))
	_, err = Load("ed25519")
	require.True(t, errors.Is(err, ErrUnknownCurve))
}

func TestLoadWithOptions(t *testing.T) {
	c, err := Load("bn254", algebra.WithDefaultWorkers(2), algebra.WithDefaultStrategy(algebra.StrategyBatchAffine))
	require.NoError(t, err)
	require.Equal(t, 2, c.Config().Workers)
	require.Equal(t, algebra.StrategyBatchAffine, c.Config().Strategy)
	require.NotSame(t, BN254(), c)
}
