package testutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/typewatch/util/testutils"
)

func TestGetOpenPort(t *testing.T) {
	_, err := testutils.GetOpenPort()
	require.NoError(t, err)
}

func TestFlatten(t *testing.T) {
	cases := []struct {
		assertion string
		in        []int
		expected  []int
	}{
		{
			"empty",
			[]int{},
			[]int{},
		},
		{
			"single",
			[]int{1},
			[]int{1},
		},
		{
			"multiple",
			[]int{1, 2, 3},
			[]int{1, 2, 3},
		},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			require.Equal(t, c.expected, testutils.Flatten(c.in))
		})
	}
}
