package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/ardanlabs/blockledger/app/services/node/handlers"
	"github.com/ardanlabs/blockledger/app/services/node/handlers/tcpgrp"
	"github.com/ardanlabs/blockledger/business/sys/metrics"
	"github.com/ardanlabs/blockledger/business/sys/validate"
	"github.com/ardanlabs/blockledger/foundation/blockchain/state"
	"github.com/ardanlabs/blockledger/foundation/blockchain/wire"
	"github.com/ardanlabs/blockledger/foundation/blockchain/worker"
	"github.com/ardanlabs/blockledger/foundation/events"
	"github.com/ardanlabs/blockledger/foundation/logger"
	"github.com/ardanlabs/blockledger/foundation/tcp"
	"github.com/ardanlabs/conf/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// config is all the configuration for the application and the default
// values.
type config struct {
	conf.Version
	Web struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		DebugHost       string        `conf:"default:0.0.0.0:7080"`
		PublicHost      string        `conf:"default:0.0.0.0:8080"`
		PrivateHost     string        `conf:"default:0.0.0.0:9080"`
	}
	Node struct {
		Host              string        `conf:"default:127.0.0.1"`
		Port              int           `conf:"default:9999,short:p" validate:"gt=0,lte=65535"`
		Interval          time.Duration `conf:"default:10s,short:i" validate:"gt=0"`
		Verbose           bool          `conf:"default:false,short:v"`
		ConfirmTimeout    time.Duration `conf:"default:0s" validate:"gte=0"`
		DeadlockDetection bool          `conf:"default:true"`
		DeadlockTimeout   time.Duration `conf:"default:30s"`
	}
}

func main() {

	// Parse the configuration first, the verbosity decides the log level.
	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "in-memory ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Println("parsing config:", err)
		os.Exit(1)
	}

	// Construct the application logger.
	log, err := logger.New(prefix, cfg.Node.Verbose)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log, cfg); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, cfg config) error {

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	if err := validate.Check(cfg.Node); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Lock Supervision

	// A lock held past the timeout or taken out of order means the ledger can
	// no longer be trusted. go-deadlock reports it and ends the process.
	deadlock.Opts.Disable = !cfg.Node.DeadlockDetection
	deadlock.Opts.DeadlockTimeout = cfg.Node.DeadlockTimeout
	deadlock.Opts.OnPotentialDeadlock = func() {
		log.Errorw("deadlock", "status", "potential deadlock detected, exiting")
		log.Sync()
		os.Exit(2)
	}

	// =========================================================================
	// Metrics Support

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mtr := metrics.New(reg)

	// =========================================================================
	// Blockchain Support

	// The blockchain packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Debugw(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the ledger and provides an API for the
	// request handlers.
	st, err := state.New(state.Config{
		EvHandler: ev,
		Recorder:  mtr,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// The worker package implements the block producer. The worker will
	// register itself with the state.
	worker.Run(st, cfg.Node.Interval, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st, reg)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 3)

	// =========================================================================
	// Start Command Service

	codec, err := wire.NewCodec()
	if err != nil {
		return err
	}

	tgh := tcpgrp.Handlers{
		Log:            log,
		State:          st,
		Codec:          codec,
		Metrics:        mtr,
		ConfirmTimeout: cfg.Node.ConfirmTimeout,
	}

	addr := net.JoinHostPort(cfg.Node.Host, strconv.Itoa(cfg.Node.Port))
	commands, err := tcp.Listen(addr, tgh.Connection, log)
	if err != nil {
		return err
	}

	go func() {
		log.Infow("startup", "status", "command listener started", "host", commands.Addr().String())
		serverErrors <- commands.Serve()
	}()

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	muxCfg := handlers.MuxConfig{
		Shutdown:       shutdown,
		Log:            log,
		State:          st,
		Evts:           evts,
		Metrics:        mtr,
		ConfirmTimeout: cfg.Node.ConfirmTimeout,
	}

	// Construct a server to service the requests against the mux. The write
	// timeout bounds how long a request may wait for its confirmation.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      handlers.PublicMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start Private Service

	log.Infow("startup", "status", "initializing V1 private API support")

	// Construct a server to service the requests against the mux.
	private := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      handlers.PrivateMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "private api router started", "host", private.Addr)
		serverErrors <- private.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Commands still waiting for a confirmation are released.
		log.Infow("shutdown", "status", "shutdown command listener started")
		if err := commands.Shutdown(ctx); err != nil {
			log.Errorw("shutdown", "status", "command listener", "ERROR", err)
		}

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown private API started")
		if err := private.Shutdown(ctx); err != nil {
			private.Close()
			return fmt.Errorf("could not stop private service gracefully: %w", err)
		}

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
