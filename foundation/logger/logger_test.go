package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/logger"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Levels(t *testing.T) {
	t.Log("Given the need to control the log level.")
	{
		for testID, debug := range []bool{false, true} {
			t.Logf("\tTest %d:\tWhen debug is %v.", testID, debug)
			{
				path := filepath.Join(t.TempDir(), "log.json")

				log, err := logger.New("TEST", debug, path)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to construct a logger: %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to construct a logger.", success, testID)

				log.Debugw("debug message")
				log.Infow("info message")
				log.Sync()

				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read the log: %v", failed, testID, err)
				}

				if got := strings.Contains(string(data), "debug message"); got != debug {
					t.Fatalf("\t%s\tTest %d:\tShould write debug messages only in debug mode: got %v", failed, testID, got)
				}
				t.Logf("\t%s\tTest %d:\tShould write debug messages only in debug mode.", success, testID)

				if !strings.Contains(string(data), `"service":"TEST"`) {
					t.Fatalf("\t%s\tTest %d:\tShould tag entries with the service.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould tag entries with the service.", success, testID)
			}
		}
	}
}
