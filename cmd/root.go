package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/ciphergram/internal/config"
	enginegame "github.com/zjrosen/ciphergram/internal/game"
	"github.com/zjrosen/ciphergram/internal/infrastructure/sqlite"
	"github.com/zjrosen/ciphergram/internal/log"
	gamemode "github.com/zjrosen/ciphergram/internal/mode/game"
	"github.com/zjrosen/ciphergram/internal/pubsub"
	"github.com/zjrosen/ciphergram/internal/puzzle"
	"github.com/zjrosen/ciphergram/internal/quotes"
	"github.com/zjrosen/ciphergram/internal/tracing"
	"github.com/zjrosen/ciphergram/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "ciphergram",
	Short:   "A terminal cryptogram puzzle game",
	Long:    `Crack substitution ciphers over famous quotes in your terminal. Pick a coded letter, guess its plaintext, and solve the quote before your mistake tokens run out.`,
	Version: version,
	RunE:    runGame,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/ciphergram/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"write a debug log to the working directory")
	rootCmd.Flags().StringP("difficulty", "d", "",
		"difficulty: easy, medium or hard")
	rootCmd.Flags().BoolP("resume", "r", false,
		"resume the most recent unfinished game")
	rootCmd.Flags().Int64("seed", 0,
		"seed for the cipher shuffle (0 = random)")

	// Bind flags to viper
	_ = viper.BindPFlag("difficulty", rootCmd.Flags().Lookup("difficulty"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("difficulty", defaults.Difficulty)
	viper.SetDefault("database.path", defaults.Database.Path)
	viper.SetDefault("scoring.mistake_penalty", defaults.Scoring.MistakePenalty)
	viper.SetDefault("quotes.file", defaults.Quotes.File)
	viper.SetDefault("quotes.no_repeat_window", defaults.Quotes.NoRepeatWindow)
	viper.SetDefault("ui.show_frequency", defaults.UI.ShowFrequency)
	viper.SetDefault("ui.show_timer", defaults.UI.ShowTimer)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .ciphergram/config.yaml (current directory)
		// 2. ~/.config/ciphergram/config.yaml (user config)
		if _, err := os.Stat(".ciphergram/config.yaml"); err == nil {
			viper.SetConfigFile(".ciphergram/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "ciphergram"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - write the default user config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "ciphergram", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// initLogging turns on the debug log when asked for via flag or environment.
func initLogging(cmd *cobra.Command) func() {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug && os.Getenv("CIPHERGRAM_DEBUG") == "" {
		return func() {}
	}
	cleanup, err := log.InitWithTeaLog("ciphergram-debug.log", "ciphergram")
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open debug log: %v\n", err)
		return func() {}
	}
	return cleanup
}

func runGame(cmd *cobra.Command, args []string) error {
	logCleanup := initLogging(cmd)
	defer logCleanup()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	tracer, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  cfg.Tracing.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tracer.Shutdown(ctx)
	}()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	seed, _ := cmd.Flags().GetInt64("seed")
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // G404: gameplay shuffle, not cryptography

	// The quote pool draws from its own generator; *rand.Rand is not safe
	// for use under two different locks, and the engine's stream stays
	// reproducible for a given --seed regardless of how many quotes are
	// drawn.
	quoteRNG := rand.New(rand.NewSource(rng.Int63())) //nolint:gosec // G404

	provider, providerCleanup, err := buildQuoteProvider(quoteRNG)
	if err != nil {
		return err
	}
	defer providerCleanup()

	broker := pubsub.NewBroker[enginegame.Snapshot]()
	defer broker.Close()

	// Mirror game events into the debug log
	eventCtx, cancelEvents := context.WithCancel(context.Background())
	defer cancelEvents()
	events := broker.Subscribe(eventCtx)
	go func() {
		for event := range events {
			log.Info(log.CatGame, "Game event",
				"type", string(event.Type), "game", event.Payload.GUID)
		}
	}()

	svc := enginegame.NewService(enginegame.Options{
		Repo:           db.GameRepository(),
		Quotes:         provider,
		RNG:            rng,
		Broker:         broker,
		Tracer:         tracer.Tracer(),
		MistakePenalty: cfg.Scoring.MistakePenalty,
	})

	resume, _ := cmd.Flags().GetBool("resume")
	model := gamemode.New(gamemode.Options{
		Service:       svc,
		Difficulty:    puzzle.ParseDifficulty(cfg.Difficulty),
		Resume:        resume,
		ShowFrequency: cfg.UI.ShowFrequency,
		ShowTimer:     cfg.UI.ShowTimer,
		Palette: styles.NewPalette(styles.Overrides{
			Highlight: cfg.Theme.Highlight,
			Subtle:    cfg.Theme.Subtle,
			Error:     cfg.Theme.Error,
			Success:   cfg.Theme.Success,
		}),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()

	// Let in-flight saves land before the connection closes
	svc.Wait()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// openDatabase opens the configured game database, falling back to the
// default location under the user's data directory.
func openDatabase() (*sqlite.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	db, err := sqlite.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening game database: %w", err)
	}
	return db, nil
}

// buildQuoteProvider assembles the quote pool: builtin pack, optional user
// pack with hot reload, and the no-repeat filter.
func buildQuoteProvider(rng *rand.Rand) (quotes.Provider, func(), error) {
	lib, err := quotes.NewLibrary(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("loading quotes: %w", err)
	}
	if cfg.Quotes.File != "" {
		if err := lib.AttachFile(cfg.Quotes.File); err != nil {
			// A broken user pack should not block playing
			log.ErrorErr(log.CatQuote, "Could not load user quote pack", err, "path", cfg.Quotes.File)
		}
	}

	cleanup := func() { _ = lib.Close() }
	if cfg.Quotes.NoRepeatWindow > 0 {
		return quotes.NewNoRepeat(lib, cfg.Quotes.NoRepeatWindow), cleanup, nil
	}
	return lib, cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
