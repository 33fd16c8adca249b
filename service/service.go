// Package service wires the Input Emitter, Type Monitor, Type Cache, and
// Output Emitter into a single running process: signal handling,
// output-file lifecycle, and an optional diagnostics HTTP server sit
// here, above the streaming core.
package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/wkalt/typewatch/emit"
	"github.com/wkalt/typewatch/introspection"
	"github.com/wkalt/typewatch/monitor"
	"github.com/wkalt/typewatch/typecache"
	"github.com/wkalt/typewatch/util/log"
)

// Start builds the pipeline described by opts and runs it until the input
// is exhausted, ctx is cancelled, or a SIGINT/SIGTERM arrives. Shutdown is
// cooperative: the input is closed first so the monitor's consumer loop
// drains to quiescence, then the diagnostics server and output are closed
// in reverse construction order.
func Start(ctx context.Context, opts ...Option) error {
	o, err := readOptions(opts...)
	if err != nil {
		return err
	}

	cacheOpts, err := buildCacheOptions(o)
	if err != nil {
		return err
	}
	loader := o.Loader
	if loader == nil {
		loader = introspection.NewLoader()
	}
	cache, err := typecache.New(loader, cacheOpts...)
	if err != nil {
		return err
	}

	input := buildInput(o)

	w, err := openOutput(o)
	if err != nil {
		return err
	}
	output := emit.NewWriter(w)

	mon, err := monitor.New(input, output, cache,
		monitor.WithTypeFilter(o.TypeFilter),
		monitor.WithRawTypeFilter(o.RawTypeFilter),
		monitor.WithIncludeNonROS(o.IncludeNonROS),
	)
	if err != nil {
		return err
	}

	var diagSrv *http.Server
	if o.DiagnosticsAddr != "" {
		diagSrv = newDiagnosticsServer(o.DiagnosticsAddr, cache)
		go func() {
			log.Infow(ctx, "starting diagnostics server", "addr", o.DiagnosticsAddr)
			if err := diagSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw(ctx, "diagnostics server failed", "error", err)
			}
		}()
	}

	sigint := make(chan os.Signal, 1)
	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT)
	signal.Notify(sigterm, syscall.SIGTERM)
	defer signal.Stop(sigint)
	defer signal.Stop(sigterm)

	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return mon.Run(gctx)
	})

	select {
	case <-sigint:
		log.Infow(ctx, "received SIGINT, shutting down")
	case <-sigterm:
		log.Infow(ctx, "received SIGTERM, shutting down")
	case <-done:
	}

	if err := input.Close(); err != nil {
		log.Errorw(ctx, "failed to close input", "error", err)
	}
	runErr := g.Wait()

	if diagSrv != nil {
		if err := shutdownDiagnosticsServer(ctx, diagSrv); err != nil {
			log.Errorw(ctx, "failed to shut down diagnostics server", "error", err)
		}
	}

	log.Infow(ctx, "shutting down",
		"types_asserted", len(cache.OrderedTypes()),
		"topics_asserted", len(cache.Topics()))

	if err := output.Close(); err != nil {
		return err
	}
	return runErr
}
