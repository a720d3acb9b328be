package algebra

// ErrorKind identifies a kind of decoding error. It satisfies the error
// interface so callers can use errors.Is against the constants below.
type ErrorKind string

// These constants identify a specific DecodeError.
const (
	// ErrInvalidLength is returned when an encoding has the wrong size.
	ErrInvalidLength = ErrorKind("ErrInvalidLength")

	// ErrNonCanonical is returned when an encoded integer is not reduced
	// modulo the field prime, or when an infinity encoding carries data.
	ErrNonCanonical = ErrorKind("ErrNonCanonical")

	// ErrInvalidFlags is returned when the flag bits are inconsistent.
	ErrInvalidFlags = ErrorKind("ErrInvalidFlags")

	// ErrNotOnCurve is returned when decoded coordinates do not satisfy the
	// curve equation, or no y exists for a compressed x.
	ErrNotOnCurve = ErrorKind("ErrNotOnCurve")

	// ErrNotInSubgroup is returned when a decoded point lies outside the
	// prime-order subgroup.
	ErrNotInSubgroup = ErrorKind("ErrNotInSubgroup")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// DecodeError identifies a malformed encoding. It has full support for
// errors.Is and errors.As, so the caller can ascertain the specific reason
// for the error by checking the underlying error kind.
type DecodeError struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e DecodeError) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e DecodeError) Unwrap() error {
	return e.Err
}

// decodeError creates a DecodeError given a set of arguments.
func decodeError(kind ErrorKind, desc string) DecodeError {
	return DecodeError{Err: kind, Description: desc}
}

const (
	flagPositiveY = 0x80
	flagInfinity  = 0x40
	flagMask      = flagPositiveY | flagInfinity
)

// Bytes returns the canonical big-endian encoding of e, ByteLen bytes long.
func (e *Element) Bytes() []byte {
	x := e.Canonical()
	return x.FillBytes(make([]byte, e.f.byteLen))
}

// SetBytes decodes a canonical big-endian encoding produced by Bytes into
// field f.
func (r *Element) SetBytes(f *Field, buf []byte) error {
	if len(buf) != f.byteLen {
		return decodeError(ErrInvalidLength, "field element has wrong length")
	}
	x := NewInt(f.limbs)
	x.SetBytes(buf)
	e, ok := f.FromCanonical(&x)
	if !ok {
		return decodeError(ErrNonCanonical, "field element is not reduced")
	}
	*r = e
	return nil
}

// CompressedSize returns the size of a compressed point: the base field
// element plus two flag bits, rounded up to whole bytes.
func (c *Curve) CompressedSize() int {
	return (c.fp.bits + 2 + 7) / 8
}

// UncompressedSize returns the size of an uncompressed point.
func (c *Curve) UncompressedSize() int {
	return c.CompressedSize() + c.fp.byteLen
}

// putX writes x right-aligned into buf and ORs flags into the first byte.
// Two spare high bits always exist because buf holds bits+2 bits.
func putX(buf []byte, x *Element, flags byte) {
	v := x.Canonical()
	v.FillBytes(buf)
	buf[0] |= flags
}

// EncodeCompressed encodes p as x with the infinity and sign-of-y flags in
// the two most significant bits.
func (p *Affine) EncodeCompressed() []byte {
	c := p.c
	buf := make([]byte, c.CompressedSize())
	if p.infinity {
		buf[0] = flagInfinity
		return buf
	}
	var flags byte
	if p.y.IsLexicographicallyLargest() {
		flags = flagPositiveY
	}
	putX(buf, &p.x, flags)
	return buf
}

// EncodeUncompressed encodes p as x, carrying the infinity flag, followed
// by y.
func (p *Affine) EncodeUncompressed() []byte {
	c := p.c
	n := c.CompressedSize()
	buf := make([]byte, c.UncompressedSize())
	if p.infinity {
		buf[0] = flagInfinity
		return buf
	}
	putX(buf[:n], &p.x, 0)
	y := p.y.Canonical()
	y.FillBytes(buf[n:])
	return buf
}

// DecodePoint decodes either encoding, chosen by length. The result is
// checked against the curve equation and for subgroup membership.
func (c *Curve) DecodePoint(buf []byte) (Affine, error) {
	p, err := c.DecodePointUnchecked(buf)
	if err != nil {
		return Affine{}, err
	}
	if !p.IsInSubgroup() {
		return Affine{}, decodeError(ErrNotInSubgroup, "point is not in the prime-order subgroup")
	}
	return p, nil
}

// DecodePointUnchecked is DecodePoint without the subgroup check. The curve
// equation is still enforced.
func (c *Curve) DecodePointUnchecked(buf []byte) (Affine, error) {
	n := c.CompressedSize()
	compressed := len(buf) == n
	if !compressed && len(buf) != c.UncompressedSize() {
		return Affine{}, decodeError(ErrInvalidLength, "point encoding has wrong length")
	}

	flags := buf[0] & flagMask
	xbuf := make([]byte, n)
	copy(xbuf, buf[:n])
	xbuf[0] &^= flagMask

	if flags&flagInfinity != 0 {
		if flags&flagPositiveY != 0 {
			return Affine{}, decodeError(ErrInvalidFlags, "infinity with sign flag")
		}
		for _, b := range buf[1:] {
			if b != 0 {
				return Affine{}, decodeError(ErrNonCanonical, "infinity encoding carries data")
			}
		}
		if xbuf[0] != 0 {
			return Affine{}, decodeError(ErrNonCanonical, "infinity encoding carries data")
		}
		return c.Infinity(), nil
	}

	x, err := c.decodeCoordinate(xbuf)
	if err != nil {
		return Affine{}, err
	}

	if compressed {
		p, ok := c.AffineFromX(&x, flags&flagPositiveY != 0)
		if !ok {
			return Affine{}, decodeError(ErrNotOnCurve, "no point with this x")
		}
		if p.y.IsZero() && flags&flagPositiveY != 0 {
			return Affine{}, decodeError(ErrInvalidFlags, "sign flag on a point with y = 0")
		}
		return p, nil
	}

	if flags&flagPositiveY != 0 {
		return Affine{}, decodeError(ErrInvalidFlags, "sign flag in uncompressed encoding")
	}
	y, err := c.decodeCoordinate(buf[n:])
	if err != nil {
		return Affine{}, err
	}
	p := Affine{c: c, x: x, y: y}
	if !p.IsOnCurve() {
		return Affine{}, decodeError(ErrNotOnCurve, "point is not on the curve")
	}
	return p, nil
}

func (c *Curve) decodeCoordinate(buf []byte) (Element, error) {
	x := NewInt(c.fp.limbs)
	if !x.SetBytes(buf) {
		return Element{}, decodeError(ErrNonCanonical, "coordinate is not reduced")
	}
	e, ok := c.fp.FromCanonical(&x)
	if !ok {
		return Element{}, decodeError(ErrNonCanonical, "coordinate is not reduced")
	}
	return e, nil
}
