package algebra

import (
	"math/big"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	fasthex "github.com/tmthrgd/go-hex"
	"gopkg.in/yaml.v2"
)

// CurveParams describes a short Weierstrass curve y^2 = x^3 + a*x + b over
// the prime field of Modulus, with a prime-order subgroup of size Order
// generated by (GeneratorX, GeneratorY). Numbers are big-endian hex strings.
type CurveParams struct {
	Name       string `json:"name" yaml:"name"`
	Modulus    string `json:"modulus" yaml:"modulus"`
	Order      string `json:"order" yaml:"order"`
	A          string `json:"a" yaml:"a"`
	B          string `json:"b" yaml:"b"`
	GeneratorX string `json:"generator_x" yaml:"generator_x"`
	GeneratorY string `json:"generator_y" yaml:"generator_y"`
	Cofactor   string `json:"cofactor" yaml:"cofactor"`
	// Endomorphism enables GLV scalar decomposition. It needs a = 0 and
	// both primes congruent to 1 mod 3.
	Endomorphism bool `json:"endomorphism" yaml:"endomorphism"`
}

// ParseCurveParamsJSON decodes CurveParams from JSON.
func ParseCurveParamsJSON(data []byte) (*CurveParams, error) {
	var p CurveParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding curve params json")
	}
	return &p, nil
}

// ParseCurveParamsYAML decodes CurveParams from YAML.
func ParseCurveParamsYAML(data []byte) (*CurveParams, error) {
	var p CurveParams
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding curve params yaml")
	}
	return &p, nil
}

// Marshal returns the JSON encoding of p.
func (p *CurveParams) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

func parseHex(field, s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, errors.Errorf("%s: empty value", field)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	buf, err := fasthex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", field)
	}
	return new(big.Int).SetBytes(buf), nil
}

type parsedParams struct {
	p, r, a, b, gx, gy, h *big.Int
}

func (p *CurveParams) parse() (*parsedParams, error) {
	var (
		out parsedParams
		err error
	)
	fields := []struct {
		name string
		src  string
		dst  **big.Int
	}{
		{"modulus", p.Modulus, &out.p},
		{"order", p.Order, &out.r},
		{"a", p.A, &out.a},
		{"b", p.B, &out.b},
		{"generator_x", p.GeneratorX, &out.gx},
		{"generator_y", p.GeneratorY, &out.gy},
		{"cofactor", p.Cofactor, &out.h},
	}
	for _, f := range fields {
		if *f.dst, err = parseHex(f.name, f.src); err != nil {
			return nil, errors.Wrapf(err, "curve %q", p.Name)
		}
	}
	for _, v := range []*big.Int{out.a, out.b, out.gx, out.gy} {
		if v.Cmp(out.p) >= 0 {
			return nil, errors.Errorf("curve %q: coordinate or coefficient not reduced", p.Name)
		}
	}
	if out.h.Sign() == 0 {
		return nil, errors.Errorf("curve %q: zero cofactor", p.Name)
	}
	return &out, nil
}
