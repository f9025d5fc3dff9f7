// Package chainmodel holds the immutable event payloads (Transaction,
// Block) and the mutable per-peer tree node that wraps a Block once it
// has been validated and linked into a peer's local tree (spec §3).
package chainmodel

import (
	"fmt"

	"github.com/google/uuid"
)

// TxSizeKb is the wire size of a single transaction (spec §3: 1 KB = 8 Kb).
const TxSizeKb = 8

// txNamespace seeds the deterministic, non-cryptographic digest used for
// transaction ids (see SPEC_FULL.md §3, Identifier scheme). It is not a
// security boundary — spec §1 explicitly disclaims real cryptography.
var txNamespace = uuid.MustParse("9b2fae10-df22-4a61-8f2e-9c9c9a0a7a31")

// Transaction is immutable after construction: a transfer of Amount coins
// from Sender to Receiver, minted at Timestamp.
type Transaction struct {
	ID        uuid.UUID
	Sender    int
	Receiver  int
	Amount    int64
	Timestamp float64
}

// NewTransaction mints a transaction with a deterministic id derived from
// its fields plus a caller-supplied nonce (disambiguates transactions
// that would otherwise share sender/receiver/amount/timestamp).
func NewTransaction(sender, receiver int, amount int64, timestamp float64, nonce uint64) Transaction {
	data := fmt.Sprintf("%d|%d|%d|%.9f|%d", sender, receiver, amount, timestamp, nonce)
	return Transaction{
		ID:        uuid.NewSHA1(txNamespace, []byte(data)),
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Timestamp: timestamp,
	}
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s: %d pays %d %d coins", t.ID, t.Sender, t.Receiver, t.Amount)
}
