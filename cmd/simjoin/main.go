// ------------------------------------------------------
// simjoin - Command Line Interface
// Similarity join under edit-distance constraints
// ------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/qgramjoin/simjoin/pkg/api"
	"github.com/qgramjoin/simjoin/pkg/config"
	"github.com/qgramjoin/simjoin/pkg/join"
	"github.com/qgramjoin/simjoin/pkg/result"
	"github.com/qgramjoin/simjoin/pkg/table"
	"github.com/qgramjoin/simjoin/pkg/tokenizer"
)

// CommandLineArgs represents command line arguments.
type CommandLineArgs struct {
	LeftPath  string `arg:"positional,required" help:"Path to the left CSV table" placeholder:"LEFT.csv"`
	RightPath string `arg:"positional,required" help:"Path to the right CSV table" placeholder:"RIGHT.csv"`

	LKeyAttr  string `arg:"--l-key"  help:"Left key column"       default:"id"`
	RKeyAttr  string `arg:"--r-key"  help:"Right key column"      default:"id"`
	LJoinAttr string `arg:"--l-join" help:"Left join column"      default:"join"`
	RJoinAttr string `arg:"--r-join" help:"Right join column"     default:"join"`

	Threshold float64  `arg:"-t,--threshold" help:"Edit-distance threshold" default:"1"`
	CompOp    string   `arg:"--comp-op"      help:"Comparison operator: <=, <, ="  default:"<="`
	QVal      int      `arg:"-q,--qval"      help:"Q-gram size"    default:"2"`
	NJobs     int      `arg:"-j,--n-jobs"    help:"Worker count: 1 sequential, -1 all CPUs, -k CPUs+1-k" default:"1"`

	AllowMissing bool     `arg:"--allow-missing" help:"Cross-produce rows with a missing join attribute"`
	LOutAttrs    []string `arg:"--l-out,separate" help:"Left columns to project into the output (repeatable)"`
	ROutAttrs    []string `arg:"--r-out,separate" help:"Right columns to project into the output (repeatable)"`
	NoSimScore   bool     `arg:"--no-sim-score" help:"Omit the _sim_score column"`

	Output     string `arg:"-o,--output"      help:"Output format: human|json|csv" default:"human"`
	OutputFile string `arg:"-O,--output-file" help:"Write output to file" placeholder:"FILE"`
	Quiet      bool   `arg:"-Q,--quiet"       help:"Suppress all output except results"`
	Verbose    int    `arg:"-v,--verbose"     help:"Verbosity level (0-2)" default:"0"`

	EnableAPI bool `arg:"--api"      help:"Enable REST API server instead of running a single join"`
	APIPort   int  `arg:"--api-port" help:"API server port" default:"8080"`
}

// Version returns the version banner shown by --version.
func (CommandLineArgs) Version() string {
	return color.New(color.FgBlue, color.Bold).Sprint("simjoin v"+config.Version) +
		" · " + color.New(color.FgWhite, color.Bold).Sprint("Edit-distance similarity join")
}

// Description returns the tool description shown in help output.
func (CommandLineArgs) Description() string {
	return "Similarity join of two tables under an edit-distance threshold"
}

func main() {
	var args CommandLineArgs
	p := arg.MustParse(&args)

	validCompOps := map[string]bool{"<=": true, "<": true, "=": true}
	if !validCompOps[args.CompOp] {
		p.Fail("comp-op must be one of: <=, <, =")
	}
	validOutputs := map[string]bool{"human": true, "json": true, "csv": true}
	if !validOutputs[strings.ToLower(args.Output)] {
		p.Fail("output must be one of: human, json, csv")
	}

	setupLogging(args.Verbose, args.Quiet)

	cfg := buildConfig(args)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n[!] Interrupt received, shutting down…")
		cancel()
	}()

	if cfg.EnableAPI {
		runAPIServer(ctx, cfg)
		return
	}

	if err := runJoin(ctx, args.LeftPath, args.RightPath, cfg); err != nil {
		log.Fatalf("join failed: %v", err)
	}
}

// runAPIServer starts the REST API and blocks until ctx is cancelled.
func runAPIServer(ctx context.Context, cfg *config.JoinConfig) {
	apiServer := api.NewServer()

	go func() {
		log.Infof("API server listening on :%d", cfg.APIPort)
		if err := apiServer.Start(cfg.APIPort); err != nil && ctx.Err() == nil {
			log.Errorf("API server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = apiServer.Shutdown(shutdownCtx)
}

// runJoin loads both tables, runs the join once, and writes the
// assembled result via the configured writer.
func runJoin(ctx context.Context, leftPath, rightPath string, cfg *config.JoinConfig) error {
	left, err := table.LoadCSV(leftPath, cfg.LKeyAttr, cfg.LJoinAttr, cfg.LOutAttrs)
	if err != nil {
		return fmt.Errorf("load left table: %w", err)
	}
	right, err := table.LoadCSV(rightPath, cfg.RKeyAttr, cfg.RJoinAttr, cfg.ROutAttrs)
	if err != nil {
		return fmt.Errorf("load right table: %w", err)
	}

	tk := tokenizer.NewQGramTokenizer(cfg.QVal)
	res, err := join.Join(ctx, left, right, tk, cfg)
	if err != nil {
		return err
	}

	tbl := result.Assemble(res, left, right, cfg)

	w, err := result.NewWriter(cfg)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer w.Close()

	if !cfg.Quiet {
		log.Infof("joined %d left rows, %d right rows -> %d pairs", len(left.Rows), len(right.Rows), len(tbl.Rows))
	}

	return w.Write(tbl)
}

// buildConfig translates CLI arguments into a JoinConfig. The CSV
// paths aren't part of the core option contract, so main passes them
// separately to runJoin.
func buildConfig(args CommandLineArgs) *config.JoinConfig {
	cfg := config.DefaultConfig()

	cfg.LKeyAttr, cfg.RKeyAttr = args.LKeyAttr, args.RKeyAttr
	cfg.LJoinAttr, cfg.RJoinAttr = args.LJoinAttr, args.RJoinAttr
	cfg.Threshold = args.Threshold
	cfg.CompOp = config.CompOp(args.CompOp)
	cfg.QVal = args.QVal
	cfg.NJobs = args.NJobs

	cfg.AllowMissing = args.AllowMissing
	cfg.LOutAttrs, cfg.ROutAttrs = args.LOutAttrs, args.ROutAttrs
	cfg.OutSimScore = !args.NoSimScore

	cfg.Output = config.OutputFormat(strings.ToLower(args.Output))
	cfg.OutputFile = args.OutputFile
	cfg.Quiet = args.Quiet
	switch {
	case args.Quiet:
		cfg.LogLevel = config.LogQuiet
	case args.Verbose <= 0:
		cfg.LogLevel = config.LogWarn
	case args.Verbose == 1:
		cfg.LogLevel = config.LogInfo
	default:
		cfg.LogLevel = config.LogDebug
	}

	cfg.EnableAPI = args.EnableAPI
	cfg.APIPort = args.APIPort

	return cfg
}

// setupLogging configures the logrus logger based on verbosity and quiet flags.
func setupLogging(verbose int, quiet bool) {
	log.SetFormatter(&log.TextFormatter{
		DisableLevelTruncation: true,
		DisableTimestamp:       true,
	})

	if quiet {
		log.SetLevel(log.PanicLevel)
		return
	}

	switch verbose {
	case 0:
		log.SetLevel(log.WarnLevel)
	case 1:
		log.SetLevel(log.InfoLevel)
	case 2:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.TraceLevel)
	}
}
