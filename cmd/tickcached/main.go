// Command tickcached is a small interactive demo binary wrapping
// tickcache.Cache: a stdin command loop (set/get/del/has/stats/clear)
// alongside an HTTP Prometheus endpoint, generalizing the teacher's
// single-shot main.go (a scripted flat-map demo) into something that
// actually drives the wheel, the arena, and the collector from
// keyboard input.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	tickcache "github.com/m-thenot/tick-cache"
	"github.com/m-thenot/tick-cache/metrics"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tickcached:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cache, err := tickcache.New[string, string](cfg.maxEntries,
		tickcache.WithTickInterval[string, string](cfg.tickInterval),
		tickcache.WithWheelSize[string, string](cfg.wheelSize),
		tickcache.WithBudgetPerTick[string, string](cfg.budgetPerTick),
		tickcache.WithPassiveExpiration[string, string](cfg.passive),
		tickcache.WithLogger[string, string](logger),
		tickcache.WithDisposeFunc[string, string](func(key, _ string, reason tickcache.DisposalReason) {
			logger.Debug("entry disposed", zap.String("key", key), zap.Stringer("reason", reason))
		}),
	)
	if err != nil {
		return fmt.Errorf("build cache: %w", err)
	}
	defer cache.Close()

	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics.NewCollector("tickcache", "demo", cache)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    cfg.metricsAddr,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", cfg.metricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		repl(os.Stdin, os.Stdout, cache)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-done:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// repl reads one command per line until EOF: "set k v ttl_ms", "get k",
// "has k", "del k", "clear", "stats". Unrecognized input prints an
// error and continues; it never exits the process on a bad command.
func repl(in *os.File, out *os.File, cache *tickcache.Cache[string, string]) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "tickcached> ready (set/get/has/del/clear/stats, Ctrl-D to exit)")
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "set":
			if len(fields) != 4 {
				fmt.Fprintln(out, "usage: set <key> <value> <ttl_ms>")
				continue
			}
			ttlMS, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				fmt.Fprintln(out, "bad ttl_ms:", err)
				continue
			}
			if err := cache.Set(fields[1], fields[2], time.Duration(ttlMS)*time.Millisecond); err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintln(out, "ok")
		case "get":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: get <key>")
				continue
			}
			if v, ok := cache.Get(fields[1]); ok {
				fmt.Fprintln(out, v)
			} else {
				fmt.Fprintln(out, "(absent)")
			}
		case "has":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: has <key>")
				continue
			}
			fmt.Fprintln(out, cache.Has(fields[1]))
		case "del":
			if len(fields) != 2 {
				fmt.Fprintln(out, "usage: del <key>")
				continue
			}
			fmt.Fprintln(out, cache.Delete(fields[1]))
		case "clear":
			cache.Clear()
			fmt.Fprintln(out, "ok")
		case "stats":
			s := cache.Stats()
			fmt.Fprintf(out, "size=%d hits=%d misses=%d sets=%d deletes=%d evictions=%d expirations=%d growth_events=%d\n",
				s.Size, s.Hits, s.Misses, s.Sets, s.Deletes, s.Evictions, s.Expirations, s.GrowthEvents)
		default:
			fmt.Fprintln(out, "unknown command:", fields[0])
		}
	}
}
