package bench

import (
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"algebra.mleku.dev"
	"algebra.mleku.dev/curves"
)

// Benchmarks comparing this module against:
// 1. btcec (pure Go secp256k1)
// 2. gnark-crypto (generated per-curve arithmetic)

const benchMSMSize = 1 << 10

var (
	benchScalar    algebra.Int
	benchScalarBuf []byte
	benchK1Point   algebra.Affine
	benchK1X       *big.Int
	benchK1Y       *big.Int
	benchK1Table   *algebra.FixedBaseTable

	benchBNPoints     []algebra.Affine
	benchBNScalars    []algebra.Int
	benchGnarkPoints  []bn254.G1Affine
	benchGnarkScalars []fr.Element
)

func initComparisonBenchData() {
	if benchScalarBuf != nil {
		return
	}
	k1 := curves.Secp256k1()
	rd := algebra.NewSeededReader([]byte("comparison-bench"))

	var err error
	benchScalar, err = k1.RandomScalar(rd)
	if err != nil {
		panic(err)
	}
	benchK1Point, err = k1.RandomPoint(rd)
	if err != nil {
		panic(err)
	}
	x, y := benchK1Point.X(), benchK1Point.Y()
	benchK1X, benchK1Y = x.Big(), y.Big()
	g := k1.Generator()
	benchK1Table = k1.NewFixedBaseTable(&g, 8)

	bn := curves.BN254()
	benchBNPoints = make([]algebra.Affine, benchMSMSize)
	benchBNScalars = make([]algebra.Int, benchMSMSize)
	benchGnarkPoints = make([]bn254.G1Affine, benchMSMSize)
	benchGnarkScalars = make([]fr.Element, benchMSMSize)
	for i := range benchBNPoints {
		if benchBNPoints[i], err = bn.RandomPoint(rd); err != nil {
			panic(err)
		}
		if benchBNScalars[i], err = bn.RandomScalar(rd); err != nil {
			panic(err)
		}
		px, py := benchBNPoints[i].X(), benchBNPoints[i].Y()
		benchGnarkPoints[i].X.SetBigInt(px.Big())
		benchGnarkPoints[i].Y.SetBigInt(py.Big())
		benchGnarkScalars[i].SetBigInt(benchBNScalars[i].Big())
	}
	benchScalarBuf = benchScalar.Bytes()
}

// BenchmarkScalarBaseMult compares k*G on secp256k1
func BenchmarkScalarBaseMult_Algebra(b *testing.B) {
	initComparisonBenchData()
	g := curves.Secp256k1().Generator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.ScalarMul(&benchScalar)
	}
}

func BenchmarkScalarBaseMult_AlgebraTable(b *testing.B) {
	initComparisonBenchData()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = benchK1Table.Mul(&benchScalar)
	}
}

func BenchmarkScalarBaseMult_Btcec(b *testing.B) {
	initComparisonBenchData()
	curve := btcec.S256()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = curve.ScalarBaseMult(benchScalarBuf)
	}
}

// BenchmarkScalarMult compares k*P for a variable P on secp256k1
func BenchmarkScalarMult_Algebra(b *testing.B) {
	initComparisonBenchData()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = benchK1Point.ScalarMul(&benchScalar)
	}
}

func BenchmarkScalarMult_AlgebraGLV(b *testing.B) {
	initComparisonBenchData()
	c := curves.Secp256k1()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.ScalarMulGLV(&benchK1Point, &benchScalar)
	}
}

func BenchmarkScalarMult_Btcec(b *testing.B) {
	initComparisonBenchData()
	curve := btcec.S256()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = curve.ScalarMult(benchK1X, benchK1Y, benchScalarBuf)
	}
}

// BenchmarkMSM compares a 1024-term multi-scalar multiplication on BN254
func BenchmarkMSM_AlgebraJacobian(b *testing.B) {
	initComparisonBenchData()
	c := curves.BN254()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.MultiScalarMul(benchBNPoints, benchBNScalars, algebra.WithStrategy(algebra.StrategyJacobian))
	}
}

func BenchmarkMSM_AlgebraBatchAffine(b *testing.B) {
	initComparisonBenchData()
	c := curves.BN254()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.MultiScalarMul(benchBNPoints, benchBNScalars, algebra.WithStrategy(algebra.StrategyBatchAffine))
	}
}

func BenchmarkMSM_Gnark(b *testing.B) {
	initComparisonBenchData()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var r bn254.G1Affine
		if _, err := r.MultiExp(benchGnarkPoints, benchGnarkScalars, ecc.MultiExpConfig{}); err != nil {
			b.Fatalf("MultiExp failed: %v", err)
		}
	}
}

// BenchmarkBatchScalarMul compares 1024 independent k_i*P_i on BN254
func BenchmarkBatchScalarMul_Algebra(b *testing.B) {
	initComparisonBenchData()
	c := curves.BN254()
	pts := make([]algebra.Affine, benchMSMSize)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(pts, benchBNPoints)
		c.BatchScalarMulInPlace(pts, benchBNScalars, 4)
	}
}

func BenchmarkBatchScalarMul_Gnark(b *testing.B) {
	initComparisonBenchData()
	out := make([]bn254.G1Affine, benchMSMSize)
	k := new(big.Int)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range out {
			benchGnarkScalars[j].BigInt(k)
			out[j].ScalarMultiplication(&benchGnarkPoints[j], k)
		}
	}
}
