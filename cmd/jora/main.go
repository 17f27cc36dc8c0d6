// -----------------------------------------------------------------------
// Last Modified: Sunday, 18th October 2026 9:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/app"
	"github.com/ternarybob/jora/internal/common"
)

const usage = `Usage: jora [flags] <panel> [args]

Panels:
  overdue            issues matched by the overdue filter
  due-soon           issues due in the next two weeks
  filter <id>        issues matched by a saved filter
  bookmarks          saved articles
  sparql [query]     SELECT query (default: dashboard.sparql_query)
  watch              refresh dashboard.panels on dashboard.refresh_schedule

Flags:
`

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("jora", pflag.ContinueOnError)
	configFiles := flags.StringArrayP("config", "c", nil, "Configuration file path (can be specified multiple times, later files override earlier ones)")
	logLevel := flags.String("log-level", "", "Log level (overrides config)")
	timeout := flags.String("timeout", "", "HTTP request timeout, e.g. 30s (overrides config)")
	reasoning := flags.Bool("reasoning", false, "Enable SPARQL reasoning (overrides config)")
	showVersion := flags.BoolP("version", "v", false, "Print version information")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Printf("jora version %s\n", common.GetFullVersion())
		return 0
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		return 2
	}

	paths := *configFiles
	if len(paths) == 0 {
		if _, err := os.Stat("jora.toml"); err == nil {
			paths = []string{"jora.toml"}
		}
	}

	// 1. Load configuration (defaults -> file1 -> file2 -> ... -> .env -> env)
	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		arbor.NewLogger().Error().Strs("paths", paths).Err(err).Msg("Failed to load configuration files")
		return 1
	}

	// 2. Apply command-line flag overrides (highest priority)
	overrides := common.FlagOverrides{LogLevel: *logLevel, Timeout: *timeout}
	if flags.Changed("reasoning") {
		overrides.Reasoning = reasoning
	}
	common.ApplyFlagOverrides(config, overrides)

	// 3. Initialize logger with final configuration
	logger := common.InitLogger(config)

	application, err := app.New(config, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return 1
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := &dashboard{
		issues:      application.IssueService,
		bookmarks:   application.BookmarkService,
		graph:       application.GraphService,
		sparqlQuery: config.Dashboard.SparqlQuery,
		now:         time.Now,
		out:         os.Stdout,
	}

	if args[0] == "watch" {
		if err := watch(ctx, application, board); err != nil {
			logger.Error().Err(err).Msg("Watch failed")
			return 1
		}
		return 0
	}

	if err := board.render(ctx, args[0], args[1:]); err != nil {
		logger.Error().Err(err).Str("panel", args[0]).Msg("Panel failed")
		return 1
	}
	return 0
}

// watch registers every configured panel as a refresh job and blocks until ctx is done
func watch(ctx context.Context, application *app.App, board *dashboard) error {
	config := application.Config
	scheduler := application.SchedulerService

	// panels share stdout
	var outMu sync.Mutex

	for _, panel := range config.Dashboard.Panels {
		panel := panel
		err := scheduler.RegisterJob(panel, config.Dashboard.RefreshSchedule, func(ctx context.Context) error {
			outMu.Lock()
			defer outMu.Unlock()
			fmt.Fprintf(board.out, "\n== %s @ %s ==\n", panel, board.now().Format(time.RFC3339))
			return board.render(ctx, panel, nil)
		})
		if err != nil {
			return err
		}
	}

	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	application.Logger.Info().
		Strs("panels", config.Dashboard.Panels).
		Str("schedule", config.Dashboard.RefreshSchedule).
		Msg("Dashboard refresh started")

	<-ctx.Done()
	scheduler.Stop()
	return nil
}
