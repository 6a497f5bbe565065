package runtime_test

import (
	"testing"

	"github.com/nfmlabs/nfm/runtime"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	require := require.New(t)

	amount, err := runtime.ParseAmount("0")
	require.NoError(err)
	require.Equal("0", amount.String())

	amount, err = runtime.ParseAmount("340282366920938463463374607431768211455")
	require.NoError(err)
	require.Equal("340282366920938463463374607431768211455", amount.String())

	for _, bad := range []string{"", "1.5", "-2", "abc", "0x10", "1,000"} {
		_, err = runtime.ParseAmount(bad)
		require.Error(err, bad)
	}
}
