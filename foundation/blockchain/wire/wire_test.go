package wire_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/fxamacker/cbor/v2"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Decode(t *testing.T) {
	codec, err := wire.NewCodec()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the codec: %v", failed, err)
	}

	t.Log("Given the need to decode commands from a connection.")
	{
		t.Logf("\tTest 0:\tWhen the stream is empty.")
		{
			var cmd wire.Command
			err := codec.Decode(bytes.NewReader(nil), &cmd)
			if !errors.Is(err, io.EOF) {
				t.Fatalf("\t%s\tTest 0:\tShould get io.EOF: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get io.EOF.", success)
		}

		t.Logf("\tTest 1:\tWhen the command carries an unknown field.")
		{
			data, err := cbor.Marshal(map[string]any{"type": wire.TypeBalance, "bogus": 1})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to marshal: %v", failed, err)
			}

			var cmd wire.Command
			if err := codec.Decode(bytes.NewReader(data), &cmd); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject the command.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the command.", success)
		}

		t.Logf("\tTest 2:\tWhen the stream is not CBOR.")
		{
			var cmd wire.Command
			if err := codec.Decode(bytes.NewReader([]byte("hello node\n")), &cmd); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject the command.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject the command.", success)
		}

		t.Logf("\tTest 3:\tWhen encoding the same command twice.")
		{
			var a, b bytes.Buffer
			codec.Encode(&a, wire.NewTransfer(1, 2, 40))
			codec.Encode(&b, wire.NewTransfer(1, 2, 40))
			if !bytes.Equal(a.Bytes(), b.Bytes()) {
				t.Fatalf("\t%s\tTest 3:\tShould produce identical bytes.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould produce identical bytes.", success)
		}
	}
}

func Test_Exchange(t *testing.T) {
	codec, err := wire.NewCodec()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the codec: %v", failed, err)
	}

	t.Log("Given the need to exchange a command with a node.")
	{
		t.Logf("\tTest 0:\tWhen the node answers a balance query.")
		{
			l, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to listen: %v", failed, err)
			}
			defer l.Close()

			got := make(chan wire.Command, 1)
			go func() {
				conn, err := l.Accept()
				if err != nil {
					return
				}
				defer conn.Close()

				var cmd wire.Command
				if err := codec.Decode(conn, &cmd); err != nil {
					return
				}
				got <- cmd

				balance := 60.0
				codec.Encode(conn, wire.Result{OK: true, Balance: &balance})
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			res, err := codec.Exchange(ctx, l.Addr().String(), wire.NewBalance(1))
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould get a result: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get a result.", success)

			if cmd := <-got; cmd != wire.NewBalance(1) {
				t.Fatalf("\t%s\tTest 0:\tShould deliver the command: got %+v", failed, cmd)
			}
			t.Logf("\t%s\tTest 0:\tShould deliver the command.", success)

			if !res.OK || res.Balance == nil || *res.Balance != 60 {
				t.Fatalf("\t%s\tTest 0:\tShould get the balance: got %s", failed, res)
			}
			t.Logf("\t%s\tTest 0:\tShould get the balance.", success)
		}

		t.Logf("\tTest 1:\tWhen the node never answers.")
		{
			l, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to listen: %v", failed, err)
			}
			defer l.Close()

			go func() {
				conn, err := l.Accept()
				if err != nil {
					return
				}
				defer conn.Close()
				time.Sleep(time.Second)
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err = codec.Exchange(ctx, l.Addr().String(), wire.NewBalance(1))
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest 1:\tShould give up at the deadline: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould give up at the deadline.", success)
		}
	}
}
