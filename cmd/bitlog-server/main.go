// Command bitlog-server serves a key-value store over TCP.
//
// The engine flag picks the storage backend. The chosen engine is sticky: a
// data directory created by one engine cannot be reopened by the other.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bretuobay/bitlog"
	"github.com/bretuobay/bitlog/internal/logfile"
	"github.com/bretuobay/bitlog/internal/pool"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "listen address")
	dir := flag.String("dir", ".", "data directory")
	engineName := flag.String("engine", "bitlog", "storage engine: bitlog or bolt")
	poolKind := flag.String("pool", string(pool.KindSharedQueue), "worker pool: unbounded, shared-queue or balanced")
	workers := flag.Int("workers", 8, "worker count for sized pools")
	metricsAddr := flag.String("metrics-addr", "", "optional address for Prometheus /metrics")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(*addr, *dir, *engineName, *poolKind, *workers, *metricsAddr); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run(addr, dir, engineName, poolKind string, workers int, metricsAddr string) error {
	if err := checkEngineDir(dir, engineName); err != nil {
		return err
	}

	engine, err := openEngine(dir, engineName)
	if err != nil {
		return err
	}
	defer engine.Close()

	workerPool, err := pool.New(pool.Kind(poolKind), workers)
	if err != nil {
		return err
	}

	server := bitlog.NewServer(engine, workerPool)

	logrus.WithFields(logrus.Fields{
		"addr":   addr,
		"dir":    dir,
		"engine": engineName,
		"pool":   poolKind,
	}).Info("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(metricsAddr, nil); err != nil {
				logrus.WithError(err).Error("metrics endpoint failed")
			}
		}()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.ListenAndServe(addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		return server.Stop()
	})
	return group.Wait()
}

func openEngine(dir, name string) (bitlog.Engine, error) {
	switch name {
	case "bitlog":
		return bitlog.Open(bitlog.DefaultOptions(dir))
	case "bolt":
		return bitlog.OpenBolt(dir)
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

// checkEngineDir refuses to open a directory whose data was written by the
// other engine.
func checkEngineDir(dir, name string) error {
	switch name {
	case "bitlog":
		if _, err := os.Stat(filepath.Join(dir, "bolt.db")); err == nil {
			return fmt.Errorf("directory %s holds bolt data, refusing to open with engine bitlog", dir)
		}
	case "bolt":
		segments, err := logfile.ListSegments(dir)
		if err == nil && len(segments) > 0 {
			return fmt.Errorf("directory %s holds bitlog data, refusing to open with engine bolt", dir)
		}
	}
	return nil
}
