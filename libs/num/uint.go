// Copyright (C) 2023 SuperChief Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package num

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Uint is an unsigned 256 bit integer, the one numeric type prices and
// amounts are expressed in throughout the core.
type Uint struct {
	u uint256.Int
}

// NewUint creates a new Uint from a uint64.
func NewUint(val uint64) *Uint {
	return &Uint{*uint256.NewInt(val)}
}

// UintZero returns a new Uint set to zero.
func UintZero() *Uint {
	return NewUint(0)
}

// UintOne returns a new Uint set to one.
func UintOne() *Uint {
	return NewUint(1)
}

// UintFromBig construct a new Uint with a big.Int,
// returns true if the big.Int is overflowing the 256 bits required.
func UintFromBig(b *big.Int) (*Uint, bool) {
	u, overflow := uint256.FromBig(b)
	if overflow || b.Sign() < 0 {
		return UintZero(), true
	}
	return &Uint{*u}, false
}

// UintFromString created a new Uint from a string in the given base,
// returns true if an error happened.
func UintFromString(str string, base int) (*Uint, bool) {
	b, ok := big.NewInt(0).SetString(str, base)
	if !ok {
		return UintZero(), true
	}
	return UintFromBig(b)
}

// MustUintFromString creates a new Uint from a base 10 string,
// and panics if the string is not a valid number.
func MustUintFromString(str string) *Uint {
	u, fail := UintFromString(str, 10)
	if fail {
		panic(fmt.Sprintf("invalid uint string: %s", str))
	}
	return u
}

// UintFromBytes takes a 32 byte big endian buffer.
func UintFromBytes(b []byte) *Uint {
	u := &Uint{}
	u.u.SetBytes(b)
	return u
}

// Sum returns the sum of all the uints in the list as a new Uint.
func Sum(vals ...*Uint) *Uint {
	s := UintZero()
	for _, v := range vals {
		s.AddSum(v)
	}
	return s
}

func (u *Uint) Clone() *Uint {
	if u == nil {
		return nil
	}
	return &Uint{u.u}
}

// Add will add x and y then store the result into u
// this is equivalent to:
// `u = x + y`
// u is returned for convenience, no new variable is created.
func (u *Uint) Add(x, y *Uint) *Uint {
	u.u.Add(&x.u, &y.u)
	return u
}

// AddSum adds multiple values at the same time to a given uint
// so x.AddSum(y, z) is the equivalent to x = x + y + z.
func (u *Uint) AddSum(vals ...*Uint) *Uint {
	for _, v := range vals {
		u.u.Add(&u.u, &v.u)
	}
	return u
}

// Sub will subtract y from x then store the result into u
// this is equivalent to:
// `u = x - y`
// u is returned for convenience, no new variable is created.
func (u *Uint) Sub(x, y *Uint) *Uint {
	u.u.Sub(&x.u, &y.u)
	return u
}

// Mul will multiply x and y then store the result into u
// this is equivalent to:
// `u = x * y`
// u is returned for convenience, no new variable is created.
func (u *Uint) Mul(x, y *Uint) *Uint {
	u.u.Mul(&x.u, &y.u)
	return u
}

// Div will divide x by y then store the result into u, truncating.
// This is equivalent to:
// `u = x / y`
// u is returned for convenience, no new variable is created.
func (u *Uint) Div(x, y *Uint) *Uint {
	u.u.Div(&x.u, &y.u)
	return u
}

func (u *Uint) IsZero() bool {
	return u.u.IsZero()
}

// EQ returns true if u == oth.
func (u *Uint) EQ(oth *Uint) bool {
	return u.u.Eq(&oth.u)
}

// NEQ returns true if u != oth.
func (u *Uint) NEQ(oth *Uint) bool {
	return !u.u.Eq(&oth.u)
}

// GT returns true if u > oth.
func (u *Uint) GT(oth *Uint) bool {
	return u.u.Gt(&oth.u)
}

// GTE returns true if u >= oth.
func (u *Uint) GTE(oth *Uint) bool {
	return !u.u.Lt(&oth.u)
}

// LT returns true if u < oth.
func (u *Uint) LT(oth *Uint) bool {
	return u.u.Lt(&oth.u)
}

// LTE returns true if u <= oth.
func (u *Uint) LTE(oth *Uint) bool {
	return !u.u.Gt(&oth.u)
}

// Uint64 returns the lower 64 bits, truncating silently like the
// underlying library does.
func (u *Uint) Uint64() uint64 {
	return u.u.Uint64()
}

// BigInt returns a big.Int copy of the value.
func (u *Uint) BigInt() *big.Int {
	return u.u.ToBig()
}

// Bytes returns the value as a big endian 32 byte array.
func (u *Uint) Bytes() [32]byte {
	return u.u.Bytes32()
}

func (u *Uint) String() string {
	return u.u.ToBig().String()
}

// ToDecimal returns the value as an arbitrary precision decimal.
func (u *Uint) ToDecimal() Decimal {
	return DecimalFromUint(u)
}

// Min returns the smallest of the 2 numbers.
func Min(a, b *Uint) *Uint {
	if a.LT(b) {
		return a.Clone()
	}
	return b.Clone()
}

// Max returns the largest of the 2 numbers.
func Max(a, b *Uint) *Uint {
	if a.GT(b) {
		return a.Clone()
	}
	return b.Clone()
}
