package errs_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/blockledger/business/web/errs"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_FromLedger(t *testing.T) {
	tt := []struct {
		name   string
		err    error
		status int
	}{
		{"notfound", fmt.Errorf("balance: %w", state.ErrAccountNotFound), http.StatusNotFound},
		{"exists", fmt.Errorf("create: %w", state.ErrAccountExists), http.StatusConflict},
		{"reserved", state.ErrReservedAccount, http.StatusBadRequest},
		{"funds", state.ErrInsufficientFunds, http.StatusBadRequest},
		{"self", fmt.Errorf("transfer: %w", state.ErrSelfTransfer), http.StatusBadRequest},
		{"amount", fmt.Errorf("create: %w", state.ErrInvalidAmount), http.StatusBadRequest},
		{"timeout", fmt.Errorf("waiting: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	t.Log("Given the need to map ledger rejections to statuses.")
	{
		for testID, test := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s rejection.", testID, test.name)
				{
					te := errs.GetTrusted(errs.FromLedger(test.err))
					if te == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get a trusted error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get a trusted error.", success, testID)

					if te.Status != test.status {
						t.Fatalf("\t%s\tTest %d:\tShould get status %d: got %d", failed, testID, test.status, te.Status)
					}
					t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, test.status)

					if !errors.Is(te, test.err) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the wrapped error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the wrapped error.", success, testID)
				}
			}

			t.Run(test.name, f)
		}

		t.Logf("\tTest %d:\tWhen handling an unknown error.", len(tt))
		{
			err := errors.New("boom")
			if errs.IsTrusted(errs.FromLedger(err)) {
				t.Fatalf("\t%s\tTest %d:\tShould not trust it.", failed, len(tt))
			}
			t.Logf("\t%s\tTest %d:\tShould not trust it.", success, len(tt))
		}
	}
}
