package algebra

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func randInt(rd *SeededReader, limbs int) Int {
	buf := make([]byte, limbs*8)
	rd.Read(buf)
	z := NewInt(limbs)
	z.SetBytes(buf)
	return z
}

func TestIntAddSubAgainstUint256(t *testing.T) {
	rd := NewSeededReader([]byte("int-add-sub"))
	edge := []Int{
		IntFromLimbs(0, 0, 0, 0),
		IntFromLimbs(1, 0, 0, 0),
		IntFromLimbs(^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)),
		IntFromLimbs(^uint64(0), 0, ^uint64(0), 0),
	}
	vals := append([]Int{}, edge...)
	for i := 0; i < 64; i++ {
		vals = append(vals, randInt(rd, 4))
	}

	for i := range vals {
		for j := range vals {
			a, b := vals[i], vals[j]
			ua, _ := a.Uint256()
			ub, _ := b.Uint256()

			var sum Int
			carry := sum.AddCarry(&a, &b)
			want, overflow := new(uint256.Int).AddOverflow(ua, ub)
			got, _ := sum.Uint256()
			if !got.Eq(want) || (carry == 1) != overflow {
				t.Fatalf("add %s + %s: got %s carry %d, want %s overflow %v", a.String(), b.String(), sum.String(), carry, want.Hex(), overflow)
			}

			var diff Int
			borrow := diff.SubBorrow(&a, &b)
			want, underflow := new(uint256.Int).SubOverflow(ua, ub)
			got, _ = diff.Uint256()
			if !got.Eq(want) || (borrow == 1) != underflow {
				t.Fatalf("sub %s - %s: got %s borrow %d, want %s underflow %v", a.String(), b.String(), diff.String(), borrow, want.Hex(), underflow)
			}
		}
	}
}

func TestIntMulWide(t *testing.T) {
	rd := NewSeededReader([]byte("int-mul"))
	for _, limbs := range []int{1, 2, 4, 6} {
		mask := new(big.Int).Lsh(big.NewInt(1), uint(64*limbs))
		for i := 0; i < 50; i++ {
			a := randInt(rd, limbs)
			b := randInt(rd, limbs)
			lo, hi := MulWide(&a, &b)

			prod := new(big.Int).Mul(a.Big(), b.Big())
			wantLo := new(big.Int).Mod(prod, mask)
			wantHi := new(big.Int).Rsh(prod, uint(64*limbs))
			if lo.Big().Cmp(wantLo) != 0 || hi.Big().Cmp(wantHi) != 0 {
				t.Fatalf("%d limbs: %s * %s = (%s, %s), want (%x, %x)", limbs, a.String(), b.String(), lo.String(), hi.String(), wantLo, wantHi)
			}

			var low Int
			low.MulLow(&a, &b)
			if !low.Equal(&lo) {
				t.Fatalf("MulLow %s, want %s", low.String(), lo.String())
			}
		}
	}
}

func TestIntShifts(t *testing.T) {
	rd := NewSeededReader([]byte("int-shift"))
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 384), big.NewInt(1))
	for i := 0; i < 20; i++ {
		a := randInt(rd, 6)
		for _, s := range []uint{0, 1, 7, 63, 64, 65, 128, 200, 383, 384, 500} {
			var l, r Int
			l.Lsh(&a, s)
			r.Rsh(&a, s)
			wantL := new(big.Int).Lsh(a.Big(), s)
			wantL.And(wantL, mask)
			wantR := new(big.Int).Rsh(a.Big(), s)
			if l.Big().Cmp(wantL) != 0 {
				t.Errorf("%s << %d = %s, want %x", a.String(), s, l.String(), wantL)
			}
			if r.Big().Cmp(wantR) != 0 {
				t.Errorf("%s >> %d = %s, want %x", a.String(), s, r.String(), wantR)
			}
		}
	}
}

func TestIntBitsAndWindows(t *testing.T) {
	tests := []struct {
		in   Int
		bits int
	}{
		{NewInt(4), 0},
		{IntFromUint64(4, 1), 1},
		{IntFromUint64(1, 0x80), 8},
		{IntFromLimbs(0, 1), 65},
		{IntFromLimbs(0, 0, 0, 1<<63), 256},
	}
	for i, test := range tests {
		if got := test.in.BitLen(); got != test.bits {
			t.Errorf("#%d: BitLen = %d, want %d", i, got, test.bits)
		}
	}

	a := IntFromLimbs(0xfedcba9876543210, 0x0123456789abcdef)
	b := a.Big()
	for offset := uint(0); offset < 128; offset += 5 {
		for _, width := range []uint{1, 3, 8, 13, 64} {
			want := new(big.Int).Rsh(b, offset)
			want.And(want, new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1)))
			if got := a.Window(offset, width); got != want.Uint64() {
				t.Errorf("Window(%d, %d) = %x, want %x", offset, width, got, want)
			}
		}
	}
	for i := 0; i < 128; i++ {
		if a.Bit(i) != b.Bit(i) {
			t.Errorf("Bit(%d) = %d, want %d", i, a.Bit(i), b.Bit(i))
		}
	}
}

func TestIntOrdering(t *testing.T) {
	tests := []struct {
		a, b Int
		want int
	}{
		{IntFromLimbs(1, 0), IntFromLimbs(0, 1), -1},
		{IntFromLimbs(0, 1), IntFromLimbs(^uint64(0), 0), 1},
		{IntFromLimbs(5, 5), IntFromLimbs(5, 5), 0},
		{IntFromUint64(1, 7), IntFromLimbs(7, 0, 0), 0},
		{IntFromUint64(1, 7), IntFromLimbs(7, 0, 1), -1},
	}
	for i, test := range tests {
		if got := test.a.Cmp(&test.b); got != test.want {
			t.Errorf("#%d: Cmp = %d, want %d", i, got, test.want)
		}
	}
}

func TestIntBytesAndHex(t *testing.T) {
	a, ok := IntFromHex(4, "0x0102030405060708090a0b0c0d0e0f10")
	if !ok {
		t.Fatal("IntFromHex failed")
	}
	if got := a.String(); got != "0x0102030405060708090a0b0c0d0e0f10" {
		t.Errorf("String = %s", got)
	}
	buf := a.Bytes()
	if len(buf) != 32 {
		t.Fatalf("Bytes length %d", len(buf))
	}
	b := NewInt(4)
	if !b.SetBytes(buf) || !b.Equal(&a) {
		t.Errorf("SetBytes round trip: %s", b.String())
	}

	small := NewInt(1)
	if small.SetBytes([]byte{1, 0, 0, 0, 0, 0, 0, 0, 0}) {
		t.Error("SetBytes accepted a value wider than the integer")
	}
	if _, ok := IntFromHex(1, "zz"); ok {
		t.Error("IntFromHex accepted invalid hex")
	}
	if _, ok := IntFromBig(2, big.NewInt(-1)); ok {
		t.Error("IntFromBig accepted a negative value")
	}
	wide := IntFromLimbs(1, 2, 0)
	if _, ok := wide.Resize(2); !ok {
		t.Error("Resize dropped zero limbs")
	}
	wide = IntFromLimbs(1, 2, 3)
	if _, ok := wide.Resize(2); ok {
		t.Error("Resize dropped a significant limb")
	}
}

func BenchmarkMulWide(b *testing.B) {
	rd := NewSeededReader([]byte("bench"))
	x, y := randInt(rd, 4), randInt(rd, 4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		MulWide(&x, &y)
	}
}
