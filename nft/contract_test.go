package nft_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/nfmlabs/nfm/nft"
	"github.com/nfmlabs/nfm/runtime"
	"github.com/nfmlabs/nfm/store"
	"github.com/stretchr/testify/require"
)

const mintDeposit = 100000

type receiverStub struct {
	id      string
	verdict []byte
	fail    bool
}

func (r *receiverStub) ID() string {
	return r.id
}

func (r *receiverStub) Invoke(ctx context.Context, env *runtime.Env, method string, args []byte) ([]byte, error) {
	if r.fail {
		return nil, errors.New("receiver rejected the token")
	}
	return r.verdict, nil
}

func buildLedger(t *testing.T) (context.Context, *runtime.Group) {
	ctx := context.Background()
	grp, err := runtime.BuildGroup(ctx, store.OpenMemory(), &runtime.Configuration{
		StorageCostPerByte: "1",
		LoopIntervalMs:     10,
	})
	require.NoError(t, err)
	grp.AddContract(nft.New("ledger", nft.ContractMetadata{Name: "Test Ledger", Symbol: "TL"}))
	return ctx, grp
}

func submit(t *testing.T, ctx context.Context, grp *runtime.Group, signer, method string, args interface{}, deposit int64) *runtime.Call {
	id, err := grp.Submit(ctx, signer, "ledger", method, args, big.NewInt(deposit))
	require.NoError(t, err)
	_, err = grp.Drain(ctx)
	require.NoError(t, err)
	call, err := grp.ReadCall(id)
	require.NoError(t, err)
	require.Equal(t, runtime.CallStateDone, call.State)
	return call
}

func viewToken(t *testing.T, ctx context.Context, grp *runtime.Group, tokenID string) *nft.JsonToken {
	reply, err := grp.View(ctx, "anyone", "ledger", "nft_token", &nft.TokenArgs{TokenID: tokenID})
	require.NoError(t, err)
	var token *nft.JsonToken
	require.NoError(t, json.Unmarshal(reply, &token))
	return token
}

func mint(t *testing.T, ctx context.Context, grp *runtime.Group, owner, tokenID string, royalty map[string]uint32) {
	call := submit(t, ctx, grp, owner, "nft_mint", &nft.MintArgs{
		TokenID:    tokenID,
		ReceiverID: owner,
		Metadata:   &nft.TokenMetadata{Title: "Token " + tokenID},
		Royalty:    royalty,
	}, mintDeposit)
	require.True(t, call.Result.Success, string(call.Result.Value))
}

func TestMintAndToken(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)

	mint(t, ctx, grp, "alice", "t1", nil)
	token := viewToken(t, ctx, grp, "t1")
	require.Equal("alice", token.OwnerID)
	require.Equal("Token t1", token.Metadata.Title)
	require.Empty(token.ApprovedAccountIDs)

	// the excess mint deposit went back to the minter
	balance, err := grp.BalanceOf("alice")
	require.NoError(err)
	require.True(balance.Sign() > 0)

	call := submit(t, ctx, grp, "bob", "nft_mint", &nft.MintArgs{
		TokenID:    "t1",
		ReceiverID: "bob",
	}, mintDeposit)
	require.False(call.Result.Success)
	require.Contains(string(call.Result.Value), "already exists")

	reply, err := grp.View(ctx, "anyone", "ledger", "nft_total_supply", nil)
	require.NoError(err)
	require.Equal("1", string(reply))
}

func TestMintRejectsOversizedRoyalty(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)

	royalty := map[string]uint32{}
	for _, account := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		royalty[account] = 100
	}
	call := submit(t, ctx, grp, "alice", "nft_mint", &nft.MintArgs{
		TokenID:    "t1",
		ReceiverID: "alice",
		Royalty:    royalty,
	}, mintDeposit)
	require.False(call.Result.Success)
	require.Contains(string(call.Result.Value), "royalty table too large")
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	mint(t, ctx, grp, "alice", "t1", nil)

	call := submit(t, ctx, grp, "alice", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "bob",
		TokenID:    "t1",
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))
	require.Equal("bob", viewToken(t, ctx, grp, "t1").OwnerID)

	reply, err := grp.View(ctx, "anyone", "ledger", "nft_supply_for_owner", &nft.SupplyForOwnerArgs{AccountID: "alice"})
	require.NoError(err)
	require.Equal("0", string(reply))
	reply, err = grp.View(ctx, "anyone", "ledger", "nft_supply_for_owner", &nft.SupplyForOwnerArgs{AccountID: "bob"})
	require.NoError(err)
	require.Equal("1", string(reply))

	// only the owner or an approved account may transfer
	call = submit(t, ctx, grp, "alice", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "carol",
		TokenID:    "t1",
	}, 1)
	require.False(call.Result.Success)
	require.Contains(string(call.Result.Value), "unauthorized")

	// a transfer to the current owner is rejected
	call = submit(t, ctx, grp, "bob", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "bob",
		TokenID:    "t1",
	}, 1)
	require.False(call.Result.Success)

	// the one unit deposit convention is enforced
	call = submit(t, ctx, grp, "bob", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "carol",
		TokenID:    "t1",
	}, 2)
	require.False(call.Result.Success)
	require.Contains(string(call.Result.Value), "deposit")
}

func TestApprovalLifecycle(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	mint(t, ctx, grp, "alice", "t1", nil)

	call := submit(t, ctx, grp, "alice", "nft_approve", &nft.ApproveArgs{
		TokenID:   "t1",
		AccountID: "bob",
	}, 100)
	require.True(call.Result.Success, string(call.Result.Value))

	reply, err := grp.View(ctx, "anyone", "ledger", "nft_is_approved", &nft.IsApprovedArgs{
		TokenID: "t1", ApprovedAccountID: "bob",
	})
	require.NoError(err)
	require.Equal("true", string(reply))

	// re-approving hands out a fresh id, the old one goes stale
	call = submit(t, ctx, grp, "alice", "nft_approve", &nft.ApproveArgs{
		TokenID:   "t1",
		AccountID: "bob",
	}, 100)
	require.True(call.Result.Success)
	zero, one := uint64(0), uint64(1)
	reply, err = grp.View(ctx, "anyone", "ledger", "nft_is_approved", &nft.IsApprovedArgs{
		TokenID: "t1", ApprovedAccountID: "bob", ApprovalID: &zero,
	})
	require.NoError(err)
	require.Equal("false", string(reply))
	reply, err = grp.View(ctx, "anyone", "ledger", "nft_is_approved", &nft.IsApprovedArgs{
		TokenID: "t1", ApprovedAccountID: "bob", ApprovalID: &one,
	})
	require.NoError(err)
	require.Equal("true", string(reply))

	// a stale approval id cannot move the token
	call = submit(t, ctx, grp, "bob", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "carol",
		TokenID:    "t1",
		ApprovalID: &zero,
	}, 1)
	require.False(call.Result.Success)
	require.Contains(string(call.Result.Value), "stale")

	// the live grant works, and the transfer resets all approvals
	call = submit(t, ctx, grp, "bob", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "carol",
		TokenID:    "t1",
		ApprovalID: &one,
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))
	token := viewToken(t, ctx, grp, "t1")
	require.Equal("carol", token.OwnerID)
	require.Empty(token.ApprovedAccountIDs)
}

func TestRevoke(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	mint(t, ctx, grp, "alice", "t1", nil)

	for _, account := range []string{"bob", "carol"} {
		call := submit(t, ctx, grp, "alice", "nft_approve", &nft.ApproveArgs{
			TokenID:   "t1",
			AccountID: account,
		}, 100)
		require.True(call.Result.Success)
	}

	call := submit(t, ctx, grp, "alice", "nft_revoke", &nft.RevokeArgs{
		TokenID:   "t1",
		AccountID: "bob",
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))
	token := viewToken(t, ctx, grp, "t1")
	require.NotContains(token.ApprovedAccountIDs, "bob")
	require.Contains(token.ApprovedAccountIDs, "carol")

	// revoking an account that was never approved is a no-op
	call = submit(t, ctx, grp, "alice", "nft_revoke", &nft.RevokeArgs{
		TokenID:   "t1",
		AccountID: "dave",
	}, 1)
	require.True(call.Result.Success)

	call = submit(t, ctx, grp, "alice", "nft_revoke_all", &nft.TokenArgs{TokenID: "t1"}, 1)
	require.True(call.Result.Success)
	require.Empty(viewToken(t, ctx, grp, "t1").ApprovedAccountIDs)

	// and again, revoke all on an empty table is idempotent
	call = submit(t, ctx, grp, "alice", "nft_revoke_all", &nft.TokenArgs{TokenID: "t1"}, 1)
	require.True(call.Result.Success)
}

func TestPayout(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	mint(t, ctx, grp, "alice", "t1", map[string]uint32{
		"artist": 3000,
		"label":  2000,
	})

	reply, err := grp.View(ctx, "anyone", "ledger", "nft_payout", &nft.PayoutArgs{
		TokenID:      "t1",
		Balance:      "10000",
		MaxLenPayout: 10,
	})
	require.NoError(err)
	var payout nft.Payout
	require.NoError(json.Unmarshal(reply, &payout))
	require.Equal(map[string]string{
		"artist": "3000",
		"label":  "2000",
		"alice":  "5000",
	}, payout.Payout)

	// shares are floored, the slack stays unassigned
	reply, err = grp.View(ctx, "anyone", "ledger", "nft_payout", &nft.PayoutArgs{
		TokenID:      "t1",
		Balance:      "333",
		MaxLenPayout: 10,
	})
	require.NoError(err)
	require.NoError(json.Unmarshal(reply, &payout))
	require.Equal(map[string]string{
		"artist": "99",
		"label":  "66",
		"alice":  "166",
	}, payout.Payout)

	_, err = grp.View(ctx, "anyone", "ledger", "nft_payout", &nft.PayoutArgs{
		TokenID:      "t1",
		Balance:      "10000",
		MaxLenPayout: 1,
	})
	require.Error(err)
}

func TestTransferCallKept(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	grp.AddContract(&receiverStub{id: "vault", verdict: []byte("false")})
	mint(t, ctx, grp, "alice", "t1", nil)

	call := submit(t, ctx, grp, "alice", "nft_transfer_call", &nft.TransferCallArgs{
		ReceiverID: "vault",
		TokenID:    "t1",
		Msg:        "stake",
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))
	require.Equal("vault", viewToken(t, ctx, grp, "t1").OwnerID)
}

func TestTransferCallReverted(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	grp.AddContract(&receiverStub{id: "vault", verdict: []byte("true")})
	mint(t, ctx, grp, "alice", "t1", nil)

	call := submit(t, ctx, grp, "alice", "nft_approve", &nft.ApproveArgs{
		TokenID:   "t1",
		AccountID: "bob",
	}, 100)
	require.True(call.Result.Success)

	call = submit(t, ctx, grp, "alice", "nft_transfer_call", &nft.TransferCallArgs{
		ReceiverID: "vault",
		TokenID:    "t1",
		Msg:        "stake",
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))

	// the receiver handed the token back, the original approvals
	// are restored with it
	token := viewToken(t, ctx, grp, "t1")
	require.Equal("alice", token.OwnerID)
	require.Equal(map[string]uint64{"bob": 0}, token.ApprovedAccountIDs)

	reply, err := grp.View(ctx, "anyone", "ledger", "nft_supply_for_owner", &nft.SupplyForOwnerArgs{AccountID: "vault"})
	require.NoError(err)
	require.Equal("0", string(reply))

	// the rollback emits a reversing transfer event, old and new
	// owner swapped and no authorized id
	events, err := grp.Events(0)
	require.NoError(err)
	var transfers []nft.TransferEventData
	for _, le := range events {
		var ev struct {
			Standard string                  `json:"standard"`
			Event    string                  `json:"event"`
			Data     []nft.TransferEventData `json:"data"`
		}
		require.NoError(json.Unmarshal(le.Payload, &ev))
		if ev.Event == nft.EventTransfer {
			require.Equal(nft.StandardName, ev.Standard)
			require.Len(ev.Data, 1)
			transfers = append(transfers, ev.Data[0])
		}
	}
	require.Len(transfers, 2)
	require.Equal("alice", transfers[0].OldOwnerID)
	require.Equal("vault", transfers[0].NewOwnerID)
	reversing := transfers[1]
	require.Equal("vault", reversing.OldOwnerID)
	require.Equal("alice", reversing.NewOwnerID)
	require.Nil(reversing.AuthorizedID)
	require.Equal([]string{"t1"}, reversing.TokenIDs)
}

func TestTransferCallRemoteFailureStands(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	grp.AddContract(&receiverStub{id: "vault", fail: true})
	mint(t, ctx, grp, "alice", "t1", nil)

	call := submit(t, ctx, grp, "alice", "nft_transfer_call", &nft.TransferCallArgs{
		ReceiverID: "vault",
		TokenID:    "t1",
		Msg:        "stake",
	}, 1)
	require.True(call.Result.Success, string(call.Result.Value))

	// the notification failed, the transfer itself stands
	require.Equal("vault", viewToken(t, ctx, grp, "t1").OwnerID)
}

func TestEnumeration(t *testing.T) {
	require := require.New(t)
	ctx, grp := buildLedger(t)
	for _, id := range []string{"t1", "t2", "t3"} {
		mint(t, ctx, grp, "alice", id, nil)
	}
	call := submit(t, ctx, grp, "alice", "nft_transfer", &nft.TransferArgs{
		ReceiverID: "bob",
		TokenID:    "t2",
	}, 1)
	require.True(call.Result.Success)

	limit := 2
	reply, err := grp.View(ctx, "anyone", "ledger", "nft_tokens", &nft.TokensArgs{Limit: &limit})
	require.NoError(err)
	var tokens []*nft.JsonToken
	require.NoError(json.Unmarshal(reply, &tokens))
	require.Len(tokens, 2)
	require.Equal("t1", tokens[0].TokenID)
	require.Equal("t2", tokens[1].TokenID)

	from := "2"
	reply, err = grp.View(ctx, "anyone", "ledger", "nft_tokens", &nft.TokensArgs{FromIndex: &from})
	require.NoError(err)
	require.NoError(json.Unmarshal(reply, &tokens))
	require.Len(tokens, 1)
	require.Equal("t3", tokens[0].TokenID)

	reply, err = grp.View(ctx, "anyone", "ledger", "nft_tokens_for_owner", &nft.TokensForOwnerArgs{AccountID: "alice"})
	require.NoError(err)
	require.NoError(json.Unmarshal(reply, &tokens))
	require.Len(tokens, 2)
	require.Equal("t1", tokens[0].TokenID)
	require.Equal("t3", tokens[1].TokenID)
}
