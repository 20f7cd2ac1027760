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

package types_test

import (
	"testing"

	"code.superchief.io/superchief/core/types"

	"github.com/stretchr/testify/assert"
)

func TestFeeRates(t *testing.T) {
	t.Run("Fee rates sum without wrapping", testTotalFeeRate)
	t.Run("A basis point rate reports as a decimal fraction", testFeeFraction)
}

func testTotalFeeRate(t *testing.T) {
	o := &types.Order{
		Fees: []types.Fee{{Rate: 65535}, {Rate: 65535}, {Rate: 300}},
	}
	assert.Equal(t, uint32(131370), o.TotalFeeRate())
	assert.Equal(t, uint32(0), (&types.Order{}).TotalFeeRate())
}

func testFeeFraction(t *testing.T) {
	assert.Equal(t, "0.03", types.FeeFraction(300).String())
	assert.Equal(t, "0.0001", types.FeeFraction(1).String())
	assert.Equal(t, "1", types.FeeFraction(10000).String())
	assert.True(t, types.FeeFraction(0).IsZero())
}
