package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eternnoir/gollmlecture/pkg/config"
	"github.com/eternnoir/gollmlecture/pkg/lecture"
	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/providers"
	"github.com/eternnoir/gollmlecture/pkg/providers/gemini"
	"github.com/eternnoir/gollmlecture/pkg/providers/local"
	"github.com/eternnoir/gollmlecture/pkg/providers/openai"
	"github.com/eternnoir/gollmlecture/pkg/textproc"
)

// transformCmd represents the transform command
var transformCmd = &cobra.Command{
	Use:   "transform [files...]",
	Short: "Transform transcript files into structured lectures",
	Long: `Transform raw conversational transcripts into structured lecture
transcripts of a target spoken duration using AI models.

The output is a markdown lecture with an introduction, main topic sections,
practical applications, and a summary, sized to fit the requested duration
at a natural speaking pace.

Examples:
  # Transform a single transcript into a 30-minute lecture
  gollmlecture transform interview.txt

  # Target a 45-minute lecture with a custom output path
  gollmlecture transform meeting.txt -d 45 -o lecture.md

  # Batch transform at a slower speaking pace
  gollmlecture transform *.txt --words-per-minute 110

  # Skip practical examples in the generated sections
  gollmlecture transform talk.md --include-examples=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	// Output options
	transformCmd.Flags().StringP("output", "o", "", "output file path (default: input_file.lecture.md)")

	// Lecture options
	transformCmd.Flags().IntP("duration", "d", 30, "target lecture duration in minutes")
	transformCmd.Flags().Int("words-per-minute", lecture.DefaultWordsPerMinute, "speaking pace used to size the lecture")
	transformCmd.Flags().Bool("include-examples", true, "include practical examples in generated sections")
	transformCmd.Flags().Float32("temperature", 0.7, "LLM temperature (0.0-2.0)")
	transformCmd.Flags().Int("max-tokens", 8000, "maximum output tokens per section request")

	// Bind flags to viper
	_ = viper.BindPFlag("lecture.duration_minutes", transformCmd.Flags().Lookup("duration"))
	_ = viper.BindPFlag("lecture.words_per_minute", transformCmd.Flags().Lookup("words-per-minute"))
	_ = viper.BindPFlag("lecture.include_examples", transformCmd.Flags().Lookup("include-examples"))
	_ = viper.BindPFlag("provider.temperature", transformCmd.Flags().Lookup("temperature"))
	_ = viper.BindPFlag("provider.max_tokens", transformCmd.Flags().Lookup("max-tokens"))
}

func runTransform(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("transform")

	log.Info().Int("file_count", len(args)).Strs("files", args).Msg("Starting transformation")

	outputPath, _ := cmd.Flags().GetString("output")
	if err := validateOutputFlag(outputPath, len(args)); err != nil {
		return err
	}

	// Get configuration
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Debug().Interface("config", cfg).Msg("Loaded configuration")

	// Initialize provider
	provider, err := initializeProvider(cfg)
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.Provider.Name).Msg("Failed to initialize provider")
		return fmt.Errorf("failed to initialize provider: %w", err)
	}
	log.Info().Str("provider", provider.Name()).Msg("Initialized LLM provider")

	// Build the transformer shared by all files
	transformer := lecture.NewTransformer(provider,
		lecture.WithWordsPerMinute(cfg.Lecture.WordsPerMinute),
		lecture.WithTemperature(cfg.Provider.Temperature),
		lecture.WithSectionTokens(cfg.Provider.MaxTokens),
	)

	// Process files
	successCount := 0
	failureCount := 0

	for _, filePath := range args {
		fileLog := log.WithField("file", filepath.Base(filePath))
		fileLog.Info().Msg("Processing file")

		if err := processFile(cmd, transformer, filePath, cfg); err != nil {
			fileLog.Error().Err(err).Msg("Failed to process file")
			failureCount++
			continue
		}
		fileLog.Info().Msg("Successfully processed file")
		successCount++
	}

	log.Info().
		Int("successful", successCount).
		Int("failed", failureCount).
		Int("total", len(args)).
		Msg("Transformation batch completed")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d files failed", failureCount, len(args))
	}
	return nil
}

// loadConfig resolves the effective configuration through the config
// loader (defaults, config file, environment) and layers changed flag
// values on top.
func loadConfig() (*config.Config, error) {
	return config.NewLoader(cfgFile).LoadWithOverrides(flagOverrides())
}

// flagOverrides collects the values the user set explicitly, via flags
// or environment variables bound to the command-line viper. Unchanged
// flag defaults are not overrides.
func flagOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})
	for _, key := range []string{
		"provider.name",
		"provider.api_key",
		"provider.model",
		"provider.base_url",
		"provider.temperature",
		"provider.max_tokens",
		"lecture.duration_minutes",
		"lecture.words_per_minute",
		"lecture.include_examples",
	} {
		if viper.IsSet(key) {
			overrides[key] = viper.Get(key)
		}
	}
	return overrides
}

// validateOutputFlag rejects a fixed --output path that multiple inputs
// would silently overwrite in turn.
func validateOutputFlag(outputPath string, inputCount int) error {
	if outputPath != "" && inputCount > 1 {
		return fmt.Errorf("--output cannot be combined with multiple input files")
	}
	return nil
}

func initializeProvider(cfg *config.Config) (providers.CompletionProvider, error) {
	log := logger.WithComponent("provider")

	switch cfg.Provider.Name {
	case "openai":
		opts := []openai.ProviderOption{}
		if cfg.Provider.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Provider.Model))
		}
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Provider.BaseURL))
		}
		if cfg.Provider.Retries > 0 {
			opts = append(opts, openai.WithRetries(cfg.Provider.Retries))
		}
		provider, err := openai.NewProvider(cfg.Provider.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		if err := provider.ValidateConfig(); err != nil {
			log.Error().Err(err).Msg("Provider validation failed")
			return nil, fmt.Errorf("provider validation failed: %w", err)
		}
		log.Info().Str("model", cfg.Provider.Model).Msg("OpenAI provider initialized")
		return provider, nil

	case "gemini":
		timeout := cfg.Provider.Timeout
		if timeout < time.Minute {
			timeout = time.Minute
			log.Debug().
				Dur("original_timeout", cfg.Provider.Timeout).
				Dur("adjusted_timeout", timeout).
				Msg("Adjusted timeout for section generation")
		}
		opts := []gemini.ProviderOption{
			gemini.WithTimeout(timeout),
			gemini.WithRetries(cfg.Provider.Retries),
		}
		if cfg.Provider.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Provider.Model))
		}
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.Provider.BaseURL))
		}
		provider, err := gemini.NewProvider(cfg.Provider.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		if err := provider.ValidateConfig(); err != nil {
			log.Error().Err(err).Msg("Provider validation failed")
			return nil, fmt.Errorf("provider validation failed: %w", err)
		}
		log.Info().Msg("Gemini provider initialized")
		return provider, nil

	case "local":
		opts := []local.ProviderOption{}
		if cfg.Provider.BaseURL != "" {
			opts = append(opts, local.WithBaseURL(cfg.Provider.BaseURL))
		}
		if cfg.Provider.ContextLimit > 0 {
			opts = append(opts, local.WithContextLimit(cfg.Provider.ContextLimit))
		}
		provider, err := local.NewProvider(cfg.Provider.Model, opts...)
		if err != nil {
			return nil, err
		}
		if err := provider.ValidateConfig(); err != nil {
			log.Error().Err(err).Msg("Provider validation failed")
			return nil, fmt.Errorf("provider validation failed: %w", err)
		}
		log.Info().Str("model", cfg.Provider.Model).Msg("Local provider initialized")
		return provider, nil

	default:
		log.Error().Str("provider", cfg.Provider.Name).Msg("Unsupported provider")
		return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, cfg.Provider.Name)
	}
}

func processFile(cmd *cobra.Command, transformer *lecture.Transformer, filePath string, cfg *config.Config) error {
	log := logger.WithComponent("processor").WithField("file", filepath.Base(filePath))

	log.Debug().Str("full_path", filePath).Msg("Starting file processing")

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Error().Err(err).Str("path", filePath).Msg("Failed to read transcript")
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	// Get output path
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = strings.TrimSuffix(filePath, filepath.Ext(filePath)) + ".lecture.md"
	}
	log.Debug().Str("output_path", outputPath).Msg("Output configuration")

	ctx := context.Background()
	startTime := time.Now()
	log.Info().Int("duration_minutes", cfg.Lecture.DurationMinutes).Msg("Starting transformation")

	result, err := transformer.TransformToLecture(ctx, string(data), cfg.Lecture.DurationMinutes, cfg.Lecture.IncludeExamples)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(startTime)).Msg("Transformation failed")
		return fmt.Errorf("transformation failed: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(result), 0o644); err != nil {
		log.Error().Err(err).Str("path", outputPath).Msg("Failed to write lecture")
		return fmt.Errorf("failed to write lecture: %w", err)
	}

	pre := textproc.NewPreprocessor()
	elapsed := time.Since(startTime)

	log.Info().
		Dur("duration", elapsed).
		Int("input_words", pre.CountWords(string(data))).
		Int("output_words", pre.CountWords(result)).
		Msg("Transformation completed successfully")

	fmt.Printf("Transformed %s in %v\n", filepath.Base(filePath), elapsed.Round(time.Second))
	fmt.Printf("  Output: %s\n", outputPath)
	fmt.Printf("  Words: %d\n", pre.CountWords(result))

	return nil
}
