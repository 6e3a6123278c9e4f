package util

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModAndFloorDivAgree(t *testing.T) {
	for _, m := range []int{12, 31} {
		for n := -100; n <= 100; n++ {
			name := fmt.Sprintf("%v mod %v", n, m)
			t.Run(name, func(t *testing.T) {
				r := Mod(n, m)
				assert.GreaterOrEqual(t, r, 0)
				assert.Less(t, r, m)
				assert.Equal(t, n, FloorDiv(n, m)*m+r)
			})
		}
	}
}

func TestFloorDivNegative(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(-1, FloorDiv(-1, 12))
	assert.Equal(-1, FloorDiv(-12, 12))
	assert.Equal(-2, FloorDiv(-13, 12))
	assert.Equal(0, FloorDiv(11, 12))
}

func TestGetSortedKeys(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	assert.Equal(t, []int{1, 2, 3}, GetSortedKeys(m))
}

func TestClamp(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(-8192, Clamp(-9000, -8192, 8191))
	assert.Equal(8191, Clamp(9000, -8192, 8191))
	assert.Equal(12, Clamp(12, -8192, 8191))
}
