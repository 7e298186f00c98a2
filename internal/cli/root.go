package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rmello/clamtap/internal/clamd"
	"github.com/rmello/clamtap/internal/config"
)

var version = "dev"

var (
	socketFlag   string
	upstreamFlag string
	listenFlag   string
	apiFlag      string
	outputFlag   string
	verboseFlag  bool
	workersFlag  int
	timeoutFlag  time.Duration
)

// appConfig holds the loaded configuration, available after PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "clamtap",
	Short: "clamtap — ClamAV malware tap for HTTP traffic",
	Long: `clamtap sits in front of an HTTP upstream, forwards unseen response
bodies to a local ClamAV daemon, and records confirmed malware
detections as findings.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		config.ApplyFlags(cfg, cmd)

		// Sync config values back to flag variables so all commands pick
		// up config-file and env-var defaults transparently.
		socketFlag = cfg.ClamdSocket
		upstreamFlag = cfg.Upstream
		listenFlag = cfg.ListenAddr
		apiFlag = cfg.APIAddr
		outputFlag = cfg.OutputFormat
		workersFlag = cfg.ScanWorkers
		timeoutFlag = cfg.Timeout

		appConfig = cfg
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&socketFlag, "clamd-socket", clamd.DefaultSocketPath, "clamd Unix socket path")
	rootCmd.PersistentFlags().StringVarP(&upstreamFlag, "upstream", "u", "", "upstream URL to proxy")
	rootCmd.PersistentFlags().StringVarP(&listenFlag, "listen", "l", ":8880", "proxy listen address")
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", ":8881", "findings API listen address")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "report format: table, json, markdown")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntVarP(&workersFlag, "workers", "w", 4, "scan worker count")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 30*time.Second, "clamd connection timeout")
}

// newLogger builds the process logger. Verbose mode lowers the level to
// debug; output goes to stderr so reports on stdout stay clean.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
