package runtime_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nfmlabs/nfm/runtime"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[ledger]
account-id = "ledger"
name = "Test Ledger"
symbol = "TL"

[market]
account-id = "market"
`
	require.NoError(os.WriteFile(path, []byte(data), 0644))

	conf, err := runtime.Setup(path)
	require.NoError(err)
	require.Equal("127.0.0.1:7575", conf.Listen)
	require.Equal(int64(300), conf.LoopIntervalMs)
	require.Equal("1", conf.StorageCostPerByte)
	require.Equal("ledger", conf.Ledger.AccountId)
	require.Equal("market", conf.Market.AccountId)

	require.NoError(os.WriteFile(path, []byte("listen = \":9999\"\n"), 0644))
	_, err = runtime.Setup(path)
	require.Error(err)
}
