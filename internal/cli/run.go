package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rmello/clamtap/internal/clamd"
	"github.com/rmello/clamtap/internal/config"
	"github.com/rmello/clamtap/internal/dedup"
	"github.com/rmello/clamtap/internal/findings"
	"github.com/rmello/clamtap/internal/inspect"
	"github.com/rmello/clamtap/internal/output"
	"github.com/rmello/clamtap/internal/proxy"
	"github.com/rmello/clamtap/internal/web"
)

// drainGrace bounds how long shutdown waits for in-flight scans.
const drainGrace = 30 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the proxy tap and findings API",
	Long: `Starts the reverse proxy in front of the configured upstream and the
findings API server. Response bodies flowing through the proxy are
submitted to clamd; confirmed detections are recorded and reported
when the process shuts down.`,
	RunE: runTap,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTap(cmd *cobra.Command, args []string) error {
	if upstreamFlag == "" {
		return fmt.Errorf("an upstream URL is required (--upstream or upstream in %s)", config.ConfigFilePath())
	}

	log := newLogger()

	client := clamd.NewClient(socketFlag, timeoutFlag)
	filter := dedup.New(appConfig.DedupCapacity, appConfig.DedupFPRate)
	store := findings.NewStore()

	engine := inspect.NewCoordinator(client, filter, store, inspect.Options{
		Methods:     appConfig.Methods,
		StatusCodes: appConfig.StatusCodes,
		Workers:     workersFlag,
		QueueSize:   appConfig.ScanQueue,
	}, log)

	tap, err := proxy.NewServer(listenFlag, upstreamFlag, engine, log)
	if err != nil {
		return err
	}
	apiSrv := web.NewServer(apiFlag, store, engine, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The derived context also cancels when either server fails to
	// start, so the shutdown goroutine never waits on a dead run.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(tap.Start)
	g.Go(apiSrv.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainGrace)
		defer cancel()

		// Stop intake first, then flush outstanding scans before the API
		// goes away so late findings still land in the store.
		if err := tap.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("proxy shutdown")
		}
		if err := engine.Drain(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("scan drain incomplete")
		}
		return apiSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	return report(cmd, store)
}

// report renders the findings collected during the run to stdout.
func report(cmd *cobra.Command, store *findings.Store) error {
	formatter, err := output.GetFormatter(outputFlag)
	if err != nil {
		return err
	}
	return formatter.Format(cmd.OutOrStdout(), store.List(""))
}
