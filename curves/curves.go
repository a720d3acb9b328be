// Package curves holds the parameters of well-known short Weierstrass
// curves and of a few small curves used for exhaustive testing.
package curves

import (
	"embed"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"algebra.mleku.dev"
)

//go:embed data/*.yaml
var data embed.FS

// ErrUnknownCurve is returned by Params and Load for a name without data.
var ErrUnknownCurve = errors.New("unknown curve")

// Names returns the names of every embedded curve, sorted.
func Names() []string {
	entries, _ := data.ReadDir("data")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Params returns the parameters of the named curve.
func Params(name string) (*algebra.CurveParams, error) {
	raw, err := data.ReadFile("data/" + name + ".yaml")
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownCurve, "%q", name)
	}
	p, err := algebra.ParseCurveParamsYAML(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "curve %q", name)
	}
	if p.Name != name {
		return nil, errors.Errorf("curve %q: data names it %q", name, p.Name)
	}
	return p, nil
}

// Load builds a new Curve from the named parameters.
func Load(name string, opts ...algebra.Option) (*algebra.Curve, error) {
	p, err := Params(name)
	if err != nil {
		return nil, err
	}
	return algebra.NewCurve(p, opts...)
}

func mustLoad(name string) func() *algebra.Curve {
	return sync.OnceValue(func() *algebra.Curve {
		c, err := Load(name)
		if err != nil {
			panic(err)
		}
		return c
	})
}

var (
	// BN254 is the G1 group of the BN254 (alt_bn128) pairing curve.
	BN254 = mustLoad("bn254")
	// BLS12381 is the G1 group of BLS12-381.
	BLS12381 = mustLoad("bls12_381")
	// BLS12377 is the G1 group of BLS12-377.
	BLS12377 = mustLoad("bls12_377")
	// Secp256k1 is the SEC 2 Koblitz curve.
	Secp256k1 = mustLoad("secp256k1")
	// P256 is NIST P-256, a curve with a = -3.
	P256 = mustLoad("p256")
	// Toy23 is y^2 = x^3 + 3 over F_23 with a subgroup of order 3.
	Toy23 = mustLoad("toy23")
	// Toy101 is y^2 = x^3 + 2x + 7 over F_101 with a subgroup of order 53.
	Toy101 = mustLoad("toy101")
	// Toy103 is y^2 = x^3 + 3 over F_103 with a subgroup of order 31 and
	// an endomorphism.
	Toy103 = mustLoad("toy103")
)
