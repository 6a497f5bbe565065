package nft

import (
	"fmt"
	"math/big"

	"github.com/nfmlabs/nfm/runtime"
)

func royaltyToPayout(bps uint32, balance *big.Int) *big.Int {
	amount := new(big.Int).Mul(balance, big.NewInt(int64(bps)))
	return amount.Quo(amount, big.NewInt(10000))
}

// computePayout splits balance across the royalty table. Every entry
// other than the owner gets floor(balance * bps / 10000); the owner
// gets the remaining share computed the same way, so truncation may
// leave the sum one unit short of balance. That slack is accepted by
// the purchase resolution, not an error.
func computePayout(token *Token, balance *big.Int, maxRecipients int) (*Payout, error) {
	if len(token.Royalty) > maxRecipients {
		return nil, fmt.Errorf("%w: %d royalty entries, market pays at most %d", ErrTooManyPayoutRecipients, len(token.Royalty), maxRecipients)
	}
	payout := &Payout{Payout: make(map[string]string, len(token.Royalty)+1)}
	var totalBps uint32
	for account, bps := range token.Royalty {
		if account == token.OwnerID {
			continue
		}
		payout.Payout[account] = royaltyToPayout(bps, balance).String()
		totalBps += bps
	}
	payout.Payout[token.OwnerID] = royaltyToPayout(10000-totalBps, balance).String()
	return payout, nil
}

// Payout is the view flavor: what would each account receive if the
// token sold for balance right now.
func (c *Contract) Payout(env *runtime.Env, args *PayoutArgs) (*Payout, error) {
	balance, err := runtime.ParseAmount(args.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	token, err := c.readToken(env.KV, args.TokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, args.TokenID)
	}
	return computePayout(token, balance, args.MaxLenPayout)
}

// TransferPayout transfers the token and returns the distribution the
// caller should pay, derived from the pre transfer owner and royalty
// table. This is the remote leg of the marketplace purchase protocol.
func (c *Contract) TransferPayout(env *runtime.Env, args *TransferPayoutArgs) (*Payout, error) {
	err := assertOneUnit(env)
	if err != nil {
		return nil, err
	}
	balance, err := runtime.ParseAmount(args.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	previous, err := c.transfer(env, env.Predecessor, args.ReceiverID, args.TokenID, args.ApprovalID, args.Memo)
	if err != nil {
		return nil, err
	}
	err = c.refundApprovedAccounts(env, previous.OwnerID, previous.ApprovedAccountIDs)
	if err != nil {
		return nil, err
	}
	return computePayout(previous, balance, args.MaxLenPayout)
}
