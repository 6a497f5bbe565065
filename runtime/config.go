package runtime

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

type LedgerConfiguration struct {
	AccountId string `toml:"account-id"`
	Name      string `toml:"name"`
	Symbol    string `toml:"symbol"`
}

type MarketConfiguration struct {
	AccountId string `toml:"account-id"`
}

type Configuration struct {
	Listen             string               `toml:"listen"`
	LoopIntervalMs     int64                `toml:"loop-interval-ms"`
	StorageCostPerByte string               `toml:"storage-cost-per-byte"`
	Ledger             *LedgerConfiguration `toml:"ledger"`
	Market             *MarketConfiguration `toml:"market"`
}

func Setup(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf Configuration
	err = toml.Unmarshal(data, &conf)
	if err != nil {
		return nil, err
	}
	if conf.Listen == "" {
		conf.Listen = "127.0.0.1:7575"
	}
	if conf.LoopIntervalMs <= 0 {
		conf.LoopIntervalMs = 300
	}
	if conf.StorageCostPerByte == "" {
		conf.StorageCostPerByte = "1"
	}
	if conf.Ledger == nil || conf.Ledger.AccountId == "" {
		return nil, fmt.Errorf("missing ledger account in %s", path)
	}
	if conf.Market == nil || conf.Market.AccountId == "" {
		return nil, fmt.Errorf("missing market account in %s", path)
	}
	return &conf, nil
}
