package mempool_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/database"
	"github.com/ardanlabs/blockledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestCRUD(t *testing.T) {
	type table struct {
		name string
		ops  database.Operations
	}

	tt := []table{
		{
			name: "basic",
			ops: database.Operations{
				{ID: 2, From: database.MasterAccount, To: 1, Amount: 100},
				{ID: 3, From: 1, To: 2, Amount: 40},
				{ID: 4, From: 2, To: 3, Amount: 10},
				{ID: 1, From: database.MasterAccount, To: 4, Amount: 5},
			},
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of operations.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, op := range tst.ops {
						mp.Upsert(op)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add new operations.", success, testID)

					for i, op := range mp.Copy() {
						if op.ID != tst.ops[i].ID {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, op.ID)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.ops[i].ID)
							t.Fatalf("\t%s\tTest %d:\tShould keep submission order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep submission order.", success, testID)

					total, found := mp.Total(2)
					if !found || total != 30 {
						t.Fatalf("\t%s\tTest %d:\tShould total pending operations: got %v", failed, testID, total)
					}
					t.Logf("\t%s\tTest %d:\tShould total pending operations.", success, testID)

					if !mp.ContainsAccount(4) || mp.ContainsAccount(9) {
						t.Fatalf("\t%s\tTest %d:\tShould only find referenced accounts.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould only find referenced accounts.", success, testID)

					drained := mp.Drain()
					if len(drained) != len(tst.ops) || mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould drain every operation: got %d left %d", failed, testID, len(drained), mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould drain every operation.", success, testID)

					mp.Upsert(tst.ops[0])
					mp.Truncate()
					if mp.Count() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestUpsertIf(t *testing.T) {
	errReject := errors.New("rejected")

	t.Log("Given the need to validate and submit in one step.")
	{
		t.Logf("\tTest 0:\tWhen concurrent submitters race for a thin balance.")
		{
			mp := mempool.New()
			mp.Upsert(database.Operation{ID: 1, From: database.MasterAccount, To: 1, Amount: 100})

			check := func(amount float64) func(database.Operations) error {
				return func(pending database.Operations) error {
					bal, _ := pending.Total(1)
					if bal < amount {
						return errReject
					}
					return nil
				}
			}

			var wg sync.WaitGroup
			var mu sync.Mutex
			accepted := 0

			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					op := database.Operation{ID: database.OperationID(100 + i), From: 1, To: 2, Amount: 60}
					if _, err := mp.UpsertIf(op, check(60)); err == nil {
						mu.Lock()
						accepted++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			if accepted != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould accept exactly one transfer: got %d", failed, accepted)
			}
			t.Logf("\t%s\tTest 0:\tShould accept exactly one transfer.", success)

			if mp.Count() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould hold two operations: got %d", failed, mp.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould hold two operations.", success)
		}
	}
}
