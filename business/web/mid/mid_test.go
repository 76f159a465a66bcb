package mid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/business/sys/metrics"
	"github.com/ardanlabs/blockledger/business/web/mid"
	"github.com/ardanlabs/blockledger/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Middleware(t *testing.T) {
	log := zap.NewNop().Sugar()
	m := metrics.New(prometheus.NewRegistry())

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(m),
		mid.Cors("https://ledger.example"),
		mid.Panics(m),
	)

	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	t.Log("Given the need to wrap handlers with the common middleware.")
	{
		t.Logf("\tTest 0:\tWhen a handler panics.")
		{
			r := httptest.NewRequest(http.MethodGet, "/v1/panic", nil)
			r.Header.Set("Origin", "https://ledger.example")
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("\t%s\tTest 0:\tShould reply with a 500: got %d", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould reply with a 500.", success)

			if strings.Contains(w.Body.String(), "boom") {
				t.Fatalf("\t%s\tTest 0:\tShould not leak the panic: %s", failed, w.Body.String())
			}
			t.Logf("\t%s\tTest 0:\tShould not leak the panic.", success)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ledger.example" {
				t.Fatalf("\t%s\tTest 0:\tShould allow the listed origin: got %q", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould allow the listed origin.", success)
		}

		t.Logf("\tTest 1:\tWhen the origin is not listed.")
		{
			r := httptest.NewRequest(http.MethodGet, "/v1/panic", nil)
			r.Header.Set("Origin", "https://other.example")
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
				t.Fatalf("\t%s\tTest 1:\tShould not allow the origin: got %q", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould not allow the origin.", success)
		}
	}
}
