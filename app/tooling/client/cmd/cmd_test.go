package cmd

import (
	"bytes"
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// fakeNode answers every command with the result and reports the commands
// it received.
func fakeNode(t *testing.T, result wire.Result) (int, <-chan wire.Command) {
	codec, err := wire.NewCodec()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the codec: %v", failed, err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to listen: %v", failed, err)
	}
	t.Cleanup(func() { l.Close() })

	got := make(chan wire.Command, 10)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}

			var cmd wire.Command
			if err := codec.Decode(conn, &cmd); err == nil {
				got <- cmd
				codec.Encode(conn, result)
			}
			conn.Close()
		}
	}()

	return l.Addr().(*net.TCPAddr).Port, got
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func Test_Commands(t *testing.T) {
	balance := 60.0

	tt := []struct {
		name   string
		args   []string
		result wire.Result
		cmd    wire.Command
		output string
	}{
		{
			name:   "create",
			args:   []string{"create-account", "1", "100"},
			result: wire.Result{OK: true, BlockID: 3},
			cmd:    wire.NewCreateAccount(1, 100),
			output: "block[3]",
		},
		{
			name:   "transfer",
			args:   []string{"transfer", "1", "2", "40"},
			result: wire.Result{OK: true, BlockID: 4},
			cmd:    wire.NewTransfer(1, 2, 40),
			output: "block[4]",
		},
		{
			name:   "balance",
			args:   []string{"balance", "1"},
			result: wire.Result{OK: true, Balance: &balance},
			cmd:    wire.NewBalance(1),
			output: "balance: 60",
		},
	}

	t.Log("Given the need to send commands from the command line.")
	{
		for testID, test := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen running %s.", testID, strings.Join(test.args, " "))
				{
					p, got := fakeNode(t, test.result)

					out, err := run(append(test.args, "--port", strconv.Itoa(p))...)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould run the command: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould run the command.", success, testID)

					if cmd := <-got; cmd != test.cmd {
						t.Fatalf("\t%s\tTest %d:\tShould send %+v: got %+v", failed, testID, test.cmd, cmd)
					}
					t.Logf("\t%s\tTest %d:\tShould send the command.", success, testID)

					if !strings.Contains(out, test.output) {
						t.Fatalf("\t%s\tTest %d:\tShould print %q: got %q", failed, testID, test.output, out)
					}
					t.Logf("\t%s\tTest %d:\tShould print the result.", success, testID)
				}
			}

			t.Run(test.name, f)
		}

		t.Logf("\tTest %d:\tWhen the node rejects the command.", len(tt))
		{
			p, _ := fakeNode(t, wire.Result{Error: "insufficient funds"})

			out, err := run("transfer", "1", "2", "1000", "--port", strconv.Itoa(p))
			if err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould fail the command.", failed, len(tt))
			}
			if !strings.Contains(out, "insufficient funds") {
				t.Fatalf("\t%s\tTest %d:\tShould print the reason: got %q", failed, len(tt), out)
			}
			t.Logf("\t%s\tTest %d:\tShould fail with the reason.", success, len(tt))
		}

		t.Logf("\tTest %d:\tWhen an argument is not a number.", len(tt)+1)
		{
			if _, err := run("balance", "alice"); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould reject the account.", failed, len(tt)+1)
			}
			t.Logf("\t%s\tTest %d:\tShould reject the account.", success, len(tt)+1)
		}
	}
}
