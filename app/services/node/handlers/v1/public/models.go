package public

import (
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
)

type balance struct {
	Account database.AccountID `json:"account"`
	Balance float64            `json:"balance"`
}

type createAccount struct {
	Account         database.AccountID `json:"account"`
	StartingBalance float64            `json:"starting_balance" validate:"finite,gte=0"`
}

type transfer struct {
	From   database.AccountID `json:"from_account"`
	To     database.AccountID `json:"to_account"`
	Amount float64            `json:"amount" validate:"finite,gte=0"`
}

type receipt struct {
	BlockID     database.BlockID     `json:"block_id"`
	OperationID database.OperationID `json:"operation_id"`
}

type operation struct {
	ID     database.OperationID `json:"id"`
	From   database.AccountID   `json:"from"`
	To     database.AccountID   `json:"to"`
	Amount float64              `json:"amount"`
}

type block struct {
	ID         database.BlockID `json:"id"`
	TimeStamp  time.Time        `json:"timestamp"`
	Operations []operation      `json:"operations"`
}

func toOperations(ops database.Operations) []operation {
	out := make([]operation, len(ops))
	for i, op := range ops {
		out[i] = operation{
			ID:     op.ID,
			From:   op.From,
			To:     op.To,
			Amount: op.Amount,
		}
	}
	return out
}

func toBlocks(blocks database.Blocks) []block {
	out := make([]block, len(blocks))
	for i, blk := range blocks {
		out[i] = block{
			ID:         blk.ID,
			TimeStamp:  time.Unix(int64(blk.TimeStamp), 0).UTC(),
			Operations: toOperations(blk.Operations),
		}
	}
	return out
}
