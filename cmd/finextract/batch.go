package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/finstatement-extractor/internal/async"
	"github.com/joseph-ayodele/finstatement-extractor/internal/ingest"
)

type batchOptions struct {
	outDir      string
	workers     int
	recursive   bool
	watch       bool
	metricsAddr string
}

func newBatchCmd() *cobra.Command {
	var opts batchOptions
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every PDF in a directory and write one workbook per file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.outDir, "out", "", "directory for workbooks (defaults to next to each PDF)")
	cmd.Flags().IntVar(&opts.workers, "workers", 2, "documents processed concurrently")
	cmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "descend into subdirectories")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "keep running and extract PDFs as they appear anywhere under dir")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")
	return cmd
}

func runBatch(cmd *cobra.Command, dir string, opts batchOptions) error {
	ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt)
	defer stop()

	files, stats, err := ingest.Scan(dir, ingest.ScanOptions{Recursive: opts.recursive, SkipHidden: true})
	if err != nil {
		return err
	}
	if len(files) == 0 && !opts.watch {
		return fmt.Errorf("no PDF files found in %s", dir)
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return err
		}
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Workbooks for finished jobs are still written after an interrupt.
	writeCtx := context.WithoutCancel(ctx)
	var (
		mu     sync.Mutex
		failed []string
	)
	handle := func(r async.Result) {
		if r.Result.Error != "" {
			mu.Lock()
			failed = append(failed, r.Job.Path)
			mu.Unlock()
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %s\n", r.Job.Path, r.Result.Error)
			return
		}
		out := workbookPath(r.Job.Path, opts.outDir)
		if err := a.exporter.WriteFile(writeCtx, out, r.Result); err != nil {
			mu.Lock()
			failed = append(failed, r.Job.Path)
			mu.Unlock()
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", r.Job.Path, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK    %s -> %s (%d rows, %s, %s)\n",
			r.Job.Path, out, len(r.Result.Rows), r.Result.Method, r.Duration.Round(time.Millisecond))
	}

	a.logger.Info("scanned input directory", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched, "unreadable", stats.Failed)

	q := async.NewProcessorQueue(a.processor, a.logger,
		async.WithWorkers(opts.workers),
		async.WithQueueSize(max(len(files), 16)),
		async.WithProcessTimeout(a.cfg.Extract.Timeout),
		async.WithResultHandler(handle),
	)
	for _, f := range files {
		if err := q.Enqueue(ctx, async.NewJob(f)); err != nil {
			a.logger.Warn("stopped enqueueing", "error", err)
			break
		}
	}
	submitted := len(files)
	if opts.watch {
		submitted += watchDir(ctx, a, q, dir)
		// ctx is done by now; queued work still gets to finish.
		ctx = context.WithoutCancel(ctx)
	}
	q.Shutdown(ctx)

	a.logger.Info("batch complete", "files", submitted, "failed", len(failed))
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d files failed", len(failed), submitted)
	}
	return nil
}

// watchDir enqueues PDFs that appear under dir until ctx ends and returns
// how many were submitted.
func watchDir(ctx context.Context, a *app, q async.Queue, dir string) int {
	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{Roots: []string{dir}, SkipHidden: true, Debounce: 500 * time.Millisecond}, a.logger)
	if err != nil {
		a.logger.Error("cannot watch directory", "dir", dir, "error", err)
		return 0
	}
	a.logger.Info("watching for new files", "dir", dir)

	n := 0
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return n
			}
			if err := q.Enqueue(ctx, async.NewJob(path)); err != nil {
				a.logger.Warn("dropped file", "path", path, "error", err)
				continue
			}
			n++
		case err, ok := <-errs:
			if ok {
				a.logger.Warn("watch error", "error", err)
			}
		}
	}
}

func workbookPath(pdfPath, outDir string) string {
	name := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)) + ".xlsx"
	if outDir == "" {
		return filepath.Join(filepath.Dir(pdfPath), name)
	}
	return filepath.Join(outDir, name)
}
