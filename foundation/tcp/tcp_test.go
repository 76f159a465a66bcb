package tcp_test

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ardanlabs/blockledger/foundation/tcp"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func echo(ctx context.Context, conn net.Conn) {
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return
	}
	conn.Write([]byte(line))
}

func Test_Serve(t *testing.T) {
	log := zap.NewNop().Sugar()

	t.Log("Given the need to serve connections concurrently.")
	{
		t.Logf("\tTest 0:\tWhen two clients connect at once.")
		{
			srv, err := tcp.Listen("127.0.0.1:0", echo, log)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to listen: %v", failed, err)
			}

			served := make(chan error, 1)
			go func() {
				served <- srv.Serve()
			}()

			// Open the first connection and leave it idle so the second
			// one only succeeds if it is served on its own goroutine.
			idle, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to connect: %v", failed, err)
			}
			defer idle.Close()

			conn, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to connect: %v", failed, err)
			}
			defer conn.Close()

			conn.SetDeadline(time.Now().Add(5 * time.Second))
			conn.Write([]byte("ping\n"))
			line, err := bufio.NewReader(conn).ReadString('\n')
			if err != nil || line != "ping\n" {
				t.Fatalf("\t%s\tTest 0:\tShould get the echo: %q %v", failed, line, err)
			}
			t.Logf("\t%s\tTest 0:\tShould serve the second client while the first is idle.", success)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			err = srv.Shutdown(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest 0:\tShould report the idle connection at shutdown: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report the idle connection at shutdown.", success)

			if err := <-served; err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould stop serving without error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould stop serving without error.", success)
		}

		t.Logf("\tTest 1:\tWhen a handler waits on the context.")
		{
			started := make(chan struct{})
			released := make(chan struct{})
			wait := func(ctx context.Context, conn net.Conn) {
				close(started)
				<-ctx.Done()
				close(released)
			}

			srv, err := tcp.Listen("127.0.0.1:0", wait, log)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to listen: %v", failed, err)
			}
			go srv.Serve()

			conn, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to connect: %v", failed, err)
			}
			defer conn.Close()

			<-started

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould shut down cleanly: %v", failed, err)
			}

			select {
			case <-released:
				t.Logf("\t%s\tTest 1:\tShould release the handler on shutdown.", success)
			default:
				t.Fatalf("\t%s\tTest 1:\tShould release the handler on shutdown.", failed)
			}
		}
	}
}
