package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/app"
	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

// configPaths allows multiple -config flags; later files override earlier
// ones.
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	showVersion = flag.Bool("version", false, "Print version information")
	runOnce     = flag.Bool("once", false, "Run one pipeline cycle and exit")
	askQuestion = flag.String("ask", "", "Ask the chatbot one question and exit")
	insightFor  = flag.String("insight", "", "Print the analyst insight for a sector and exit")
	writeReport = flag.Bool("report", false, "Write a PDF briefing after -once completes")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Pulse version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup order: config, validate, logger, banner, application graph.
	if len(configFiles) == 0 {
		if _, err := os.Stat("pulse.toml"); err == nil {
			configFiles = append(configFiles, "pulse.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	if err := config.Validate(); err != nil {
		arbor.NewLogger().Fatal().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("badger_path", config.Storage.Badger.Path).
		Str("embed_provider", config.LLM.EmbedProvider).
		Str("generate_provider", config.LLM.GenerateProvider).
		Msg("Configuration loaded")

	ctx := context.Background()
	application, err := app.New(ctx, config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	switch {
	case *askQuestion != "":
		runAsk(ctx, application, *askQuestion)
	case *insightFor != "":
		runInsight(ctx, application, *insightFor)
	case *runOnce:
		runSingleCycle(ctx, application)
	default:
		runScheduled(application)
	}
}

// runScheduled starts the cron-driven pipeline and blocks until a signal.
func runScheduled(application *app.App) {
	logger := application.Logger

	if err := application.Pipeline.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start pipeline")
		os.Exit(1)
	}

	logger.Info().
		Str("schedule", application.Config.Pipeline.Schedule).
		Msg("Pulse running - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	application.Pipeline.Stop()

	// Give an in-flight stage a moment to reach its boundary.
	deadline := time.After(30 * time.Second)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for application.Pipeline.State() != models.StateIdle {
		select {
		case <-deadline:
			logger.Warn().Msg("Shutdown timeout reached with pipeline still busy")
			return
		case <-ticker.C:
		}
	}
}

func runSingleCycle(ctx context.Context, application *app.App) {
	logger := application.Logger

	result := application.Pipeline.RunCycle(ctx)
	if result == nil {
		logger.Fatal().Msg("Pipeline refused to run")
		os.Exit(1)
	}

	for _, stage := range result.Stages {
		fmt.Printf("%-20s %-10s items=%-5d %s\n", stage.Stage, stage.Status, stage.Items, stage.Error)
	}

	if *writeReport {
		snapshot, err := application.Storage.SnapshotStorage().LatestSnapshot(ctx, "24h")
		if err != nil || snapshot == nil {
			logger.Error().Err(err).Msg("No snapshot available for briefing")
			return
		}
		path, err := application.Reports.WriteBriefing(snapshot)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to write briefing")
			return
		}
		fmt.Printf("briefing written to %s\n", path)
	}
}

func runAsk(ctx context.Context, application *app.App, question string) {
	answer, err := application.Chat.Ask(ctx, question)
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to answer question")
		os.Exit(1)
	}

	fmt.Println(answer.Text)
	if answer.Grounded {
		fmt.Println("\nSources:")
		for i, source := range answer.Sources {
			fmt.Printf("  [%d] %s (%s, %s)\n", i+1, source.Title, source.Sector, source.PublishedAt.Format("2006-01-02"))
		}
	} else {
		fmt.Println("\n(not based on indexed articles)")
	}
}

func runInsight(ctx context.Context, application *app.App, sector string) {
	insight, err := application.Insights.SectorInsight(ctx, models.Sector(sector))
	if err != nil {
		application.Logger.Fatal().Err(err).Msg("Failed to generate sector insight")
		os.Exit(1)
	}

	fmt.Printf("%s (%d articles this week)\n\n%s\n", insight.Sector, insight.ArticleCount, insight.Insights)
	if len(insight.KeyThemes) > 0 {
		fmt.Printf("\nKey themes: %v\n", insight.KeyThemes)
	}
}
