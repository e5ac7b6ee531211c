package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eternnoir/gollmlecture/pkg/config"
	"github.com/eternnoir/gollmlecture/pkg/lecture"
	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory for new transcripts and transform them",
	Long: `Watch a directory for new or modified transcript files and automatically
transform them into structured lectures using the configured AI model. All
files in the watch session share the same duration and configuration.

Examples:
  # Watch current directory
  gollmlecture watch .

  # Watch recursively with file movement
  gollmlecture watch ./inbox -r --move-to ./processed

  # Watch with custom output directory
  gollmlecture watch ./transcripts --output-dir ./lectures

  # Watch specific file types
  gollmlecture watch ./notes --pattern "*.md"

  # Target one-hour lectures
  gollmlecture watch ./talks -d 60`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// Watch options
	watchCmd.Flags().StringSliceP("pattern", "", []string{"*.txt", "*.md"},
		"file patterns to watch (comma-separated)")
	watchCmd.Flags().BoolP("recursive", "r", false, "watch subdirectories recursively")
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval for new files")
	watchCmd.Flags().Bool("no-existing", false, "skip processing existing files on startup")

	// Processing options
	watchCmd.Flags().Duration("stability-wait", 2*time.Second, "time to wait for file stability")
	watchCmd.Flags().Duration("processing-timeout", 30*time.Minute, "maximum time to process a single file")
	watchCmd.Flags().Int("max-workers", 2, "maximum concurrent processing workers")

	// Lecture options
	watchCmd.Flags().IntP("duration", "d", 30, "target lecture duration in minutes")
	watchCmd.Flags().Int("words-per-minute", lecture.DefaultWordsPerMinute, "speaking pace used to size the lectures")
	watchCmd.Flags().Bool("include-examples", true, "include practical examples in generated sections")
	watchCmd.Flags().Float32("temperature", 0.7, "LLM temperature (0.0-2.0)")
	watchCmd.Flags().Int("max-tokens", 8000, "maximum output tokens per section request")

	// Output options
	watchCmd.Flags().String("output-dir", "", "directory for generated lectures")
	watchCmd.Flags().String("move-to", "", "move processed transcripts to this directory")

	// History options
	watchCmd.Flags().String("history-db", ".gollmlecture-watch.db", "path to history database")

	// Bind flags to viper
	_ = viper.BindPFlag("watch.patterns", watchCmd.Flags().Lookup("pattern"))
	_ = viper.BindPFlag("watch.recursive", watchCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("watch.interval", watchCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("watch.stability_wait", watchCmd.Flags().Lookup("stability-wait"))
	_ = viper.BindPFlag("watch.processing_timeout", watchCmd.Flags().Lookup("processing-timeout"))
	_ = viper.BindPFlag("watch.max_workers", watchCmd.Flags().Lookup("max-workers"))
	_ = viper.BindPFlag("watch.output_dir", watchCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("watch.move_to_dir", watchCmd.Flags().Lookup("move-to"))
	_ = viper.BindPFlag("watch.history_db", watchCmd.Flags().Lookup("history-db"))
	_ = viper.BindPFlag("lecture.duration_minutes", watchCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag("lecture.words_per_minute", watchCmd.Flags().Lookup("words-per-minute"))
	_ = viper.BindPFlag("lecture.include_examples", watchCmd.Flags().Lookup("include-examples"))
	_ = viper.BindPFlag("provider.temperature", watchCmd.Flags().Lookup("temperature"))
	_ = viper.BindPFlag("provider.max_tokens", watchCmd.Flags().Lookup("max-tokens"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")

	watchDir := args[0]
	log.Info().Str("directory", watchDir).Msg("Starting watch mode")

	// Validate directory
	info, err := os.Stat(watchDir)
	if err != nil {
		return fmt.Errorf("invalid watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch path must be a directory")
	}

	// Initialize provider first
	appCfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	provider, err := initializeProvider(appCfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize provider")
		return fmt.Errorf("failed to initialize provider: %w", err)
	}

	transformer := lecture.NewTransformer(provider,
		lecture.WithWordsPerMinute(appCfg.Lecture.WordsPerMinute),
		lecture.WithTemperature(appCfg.Provider.Temperature),
		lecture.WithSectionTokens(appCfg.Provider.MaxTokens),
	)

	cfg := loadWatcherConfig(cmd, watchDir, appCfg)
	log.Debug().Interface("config", cfg).Msg("Loaded watch configuration")

	fileWatcher, err := watcher.New(cfg, transformer)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create file watcher")
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Set progress callback
	fileWatcher.SetProgressCallback(func(event *watcher.ProgressEvent) {
		switch event.Type {
		case "found":
			fmt.Printf("Found: %s\n", event.FilePath)
		case "processing":
			fmt.Printf("Processing: %s\n", event.FilePath)
		case "completed":
			fmt.Printf("Completed: %s - %s\n", event.FilePath, event.Message)
		case "failed":
			fmt.Printf("Failed: %s - %v\n", event.FilePath, event.Error)
		case "skipped":
			fmt.Printf("Skipped: %s - %s\n", event.FilePath, event.Message)
		}
	})

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start watcher
	if err := fileWatcher.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start file watcher")
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Printf("\nWatching directory: %s\n", watchDir)
	if cfg.Recursive {
		fmt.Println("   Recursive: Yes")
	}
	fmt.Printf("   Patterns: %s\n", strings.Join(cfg.Patterns, ", "))
	fmt.Printf("   Workers: %d\n", cfg.MaxWorkers)
	fmt.Printf("   Duration: %d minutes\n", cfg.DurationMinutes)
	if cfg.OutputDir != "" {
		fmt.Printf("   Output: %s\n", cfg.OutputDir)
	}
	if cfg.MoveToDir != "" {
		fmt.Printf("   Move to: %s\n", cfg.MoveToDir)
	}
	fmt.Println("\nPress Ctrl+C to stop watching...")

	// Wait for shutdown signal
	<-sigChan
	fmt.Println("\n\nShutting down...")

	// Stop watcher
	if err := fileWatcher.Stop(); err != nil {
		log.Error().Err(err).Msg("Error stopping file watcher")
		return fmt.Errorf("error stopping file watcher: %w", err)
	}

	// Display final stats
	stats := fileWatcher.GetStats()
	fmt.Printf("\nFinal Statistics:\n")
	fmt.Printf("   Processed: %d files\n", stats.ProcessedCount)
	fmt.Printf("   Failed: %d files\n", stats.FailedCount)
	fmt.Printf("   Skipped: %d files\n", stats.SkippedCount)
	fmt.Printf("   Duration: %v\n", time.Since(stats.StartTime).Round(time.Second))

	return nil
}

func loadWatcherConfig(cmd *cobra.Command, watchDir string, appCfg *config.Config) *watcher.Config {
	cfg := watcher.DefaultConfig()
	cfg.WatchDir = watchDir

	if patterns, err := cmd.Flags().GetStringSlice("pattern"); err == nil && len(patterns) > 0 {
		cfg.Patterns = patterns
	}
	cfg.Recursive, _ = cmd.Flags().GetBool("recursive")
	if interval, err := cmd.Flags().GetDuration("interval"); err == nil && interval > 0 {
		cfg.Interval = interval
	}
	if wait, err := cmd.Flags().GetDuration("stability-wait"); err == nil && wait > 0 {
		cfg.StabilityWait = wait
	}
	if timeout, err := cmd.Flags().GetDuration("processing-timeout"); err == nil && timeout > 0 {
		cfg.ProcessingTimeout = timeout
	}
	if workers, err := cmd.Flags().GetInt("max-workers"); err == nil && workers > 0 {
		cfg.MaxWorkers = workers
	}
	cfg.MoveToDir, _ = cmd.Flags().GetString("move-to")
	cfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
	if db, err := cmd.Flags().GetString("history-db"); err == nil && db != "" {
		cfg.HistoryDB = db
	}
	if noExisting, _ := cmd.Flags().GetBool("no-existing"); noExisting {
		cfg.ProcessExisting = false
	}

	cfg.DurationMinutes = appCfg.Lecture.DurationMinutes
	cfg.IncludeExamples = appCfg.Lecture.IncludeExamples

	return cfg
}
