package main

import (
	"context"
	"flag"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/nfmlabs/nfm/market"
	"github.com/nfmlabs/nfm/nft"
	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
)

func main() {
	ctx := context.Background()

	bp := flag.String("d", "~/.nfm/data", "database directory path")
	cp := flag.String("c", "~/.nfm/config.toml", "configuration file path")
	flag.Parse()

	if strings.HasPrefix(*cp, "~/") {
		usr, _ := user.Current()
		*cp = filepath.Join(usr.HomeDir, (*cp)[2:])
	}
	conf, err := runtime.Setup(*cp)
	if err != nil {
		panic(err)
	}

	if strings.HasPrefix(*bp, "~/") {
		usr, _ := user.Current()
		*bp = filepath.Join(usr.HomeDir, (*bp)[2:])
	}
	db, err := store.OpenBadger(ctx, *bp)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	group, err := runtime.BuildGroup(ctx, db, conf)
	if err != nil {
		panic(err)
	}
	group.AddContract(nft.New(conf.Ledger.AccountId, nft.ContractMetadata{
		Name:   conf.Ledger.Name,
		Symbol: conf.Ledger.Symbol,
	}))
	group.AddContract(market.New(conf.Market.AccountId))

	go func() {
		err := ServeRPC(group, conf)
		if err != nil {
			panic(err)
		}
	}()
	group.Run(ctx)
}
