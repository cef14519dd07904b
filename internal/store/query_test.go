package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageOffset(t *testing.T) {
	require.Zero(t, Page{}.Offset())
	require.Equal(t, 20, Page{Page: 3, Limit: 10}.Offset())
	require.Equal(t, math.MaxInt, Page{Page: 922337203685477582, Limit: 10}.Offset())
	require.Equal(t, math.MaxInt, Page{Page: math.MaxInt, Limit: math.MaxInt}.Offset())
}

func TestSlice(t *testing.T) {
	rows := []int{1, 2, 3, 4, 5}
	require.Equal(t, rows, Slice(rows, Page{}))
	require.Equal(t, []int{3, 4}, Slice(rows, Page{Page: 2, Limit: 2}))
	require.Equal(t, []int{5}, Slice(rows, Page{Page: 3, Limit: 2}))
	require.Empty(t, Slice(rows, Page{Page: 4, Limit: 2}))
	require.Empty(t, Slice(rows, Page{Page: 922337203685477582, Limit: 10}))
	require.Equal(t, rows, Slice(rows, Page{Page: 1, Limit: math.MaxInt}))
}
