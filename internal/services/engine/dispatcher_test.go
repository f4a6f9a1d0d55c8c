package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rafalpiotrowski/tx-guard/internal/entity"
)

func runDispatcher(t *testing.T, txs []entity.Transaction) map[entity.ClientID]entity.Account {
	t.Helper()

	stream := make(chan entity.Transaction, len(txs))
	for _, tx := range txs {
		stream <- tx
	}
	close(stream)

	d := NewDispatcher(2, nil, zap.NewNop())
	accounts := d.Run(stream)

	byClient := make(map[entity.ClientID]entity.Account, len(accounts))
	for _, acc := range accounts {
		_, dup := byClient[acc.Client]
		require.False(t, dup, "client %d emitted more than once", acc.Client)
		byClient[acc.Client] = acc
	}
	return byClient
}

func TestDispatcherSingleDeposit(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("1.0000")},
	})

	require.Len(t, got, 1)
	assert.True(t, got[1].Equal(account("1.0000", "0", false)))
}

func TestDispatcherDisputeHoldsFunds(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("10.0000")},
		{Kind: entity.Dispute, Client: 1, TxID: 1},
	})

	require.Len(t, got, 1)
	assert.True(t, got[1].Available.Equal(dec("0")))
	assert.True(t, got[1].Held.Equal(dec("10")))
	assert.True(t, got[1].Total.Equal(dec("10")))
	assert.False(t, got[1].Locked)
}

func TestDispatcherResolveReleasesFunds(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("10.0000")},
		{Kind: entity.Dispute, Client: 1, TxID: 1},
		{Kind: entity.Resolve, Client: 1, TxID: 1},
	})

	require.Len(t, got, 1)
	assert.True(t, got[1].Available.Equal(dec("10")))
	assert.True(t, got[1].Held.Equal(dec("0")))
	assert.True(t, got[1].Total.Equal(dec("10")))
	assert.False(t, got[1].Locked)
}

func TestDispatcherChargebackLocksAccount(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("10.0000")},
		{Kind: entity.Dispute, Client: 1, TxID: 1},
		{Kind: entity.Chargeback, Client: 1, TxID: 1},
	})

	require.Len(t, got, 1)
	assert.True(t, got[1].Available.Equal(dec("0")))
	assert.True(t, got[1].Held.Equal(dec("0")))
	assert.True(t, got[1].Total.Equal(dec("0")))
	assert.True(t, got[1].Locked)
}

func TestDispatcherRejectedWithdrawalLeavesBalance(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 2, TxID: 2, Amount: dec("5.0000")},
		{Kind: entity.Withdrawal, Client: 2, TxID: 3, Amount: dec("20.0000")},
	})

	require.Len(t, got, 1)
	assert.True(t, got[2].Equal(account2(2, "5.0000", "0", false)))
}

func TestDispatcherLockedAccountStaysUnchanged(t *testing.T) {
	got := runDispatcher(t, []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("10.0000")},
		{Kind: entity.Dispute, Client: 1, TxID: 1},
		{Kind: entity.Chargeback, Client: 1, TxID: 1},
		{Kind: entity.Deposit, Client: 1, TxID: 2, Amount: dec("100.0000")},
		{Kind: entity.Withdrawal, Client: 1, TxID: 3, Amount: dec("1.0000")},
	})

	require.Len(t, got, 1)
	assert.True(t, got[1].Locked)
	assert.True(t, got[1].Total.Equal(dec("0")), "locked account must not change")
}

func TestDispatcherIsolatesClients(t *testing.T) {
	var txs []entity.Transaction
	// interleave many clients so their actors actually run concurrently
	for i := 0; i < 50; i++ {
		for client := entity.ClientID(1); client <= 10; client++ {
			txs = append(txs, entity.Transaction{
				Kind:   entity.Deposit,
				Client: client,
				TxID:   entity.TxID(uint32(client)*1000 + uint32(i)),
				Amount: dec("0.0001"),
			})
		}
	}
	// tx ids are scoped per client ledger, a dispute for client 1 must
	// never touch client 2 even with a colliding id
	txs = append(txs, entity.Transaction{Kind: entity.Dispute, Client: 1, TxID: 1000})

	got := runDispatcher(t, txs)
	require.Len(t, got, 10)

	assert.True(t, got[1].Held.Equal(dec("0.0001")))
	for client := entity.ClientID(2); client <= 10; client++ {
		assert.True(t, got[client].Held.Equal(dec("0")), "client %d must be untouched", client)
		assert.True(t, got[client].Total.Equal(dec("0.0050")))
	}
}

func TestDispatcherDeterministicPerClient(t *testing.T) {
	txs := []entity.Transaction{
		{Kind: entity.Deposit, Client: 1, TxID: 1, Amount: dec("3.0000")},
		{Kind: entity.Deposit, Client: 2, TxID: 2, Amount: dec("7.5000")},
		{Kind: entity.Withdrawal, Client: 1, TxID: 3, Amount: dec("1.0000")},
		{Kind: entity.Dispute, Client: 2, TxID: 2},
		{Kind: entity.Deposit, Client: 1, TxID: 4, Amount: dec("0.1234")},
		{Kind: entity.Resolve, Client: 2, TxID: 2},
	}

	first := runDispatcher(t, txs)
	for i := 0; i < 20; i++ {
		again := runDispatcher(t, txs)
		require.Len(t, again, len(first))
		for client, acc := range first {
			assert.True(t, again[client].Equal(acc), "replay %d diverged for client %d", i, client)
		}
	}
}

func account2(client entity.ClientID, available, held string, locked bool) entity.Account {
	acc := account(available, held, locked)
	acc.Client = client
	return acc
}
