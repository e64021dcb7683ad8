package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"teentech/cmd/teentech/ui"
	"teentech/internal/api"
	"teentech/internal/auth"
	"teentech/internal/config"
	"teentech/internal/lessons"
	"teentech/internal/logging"
	"teentech/internal/session"
)

var (
	// Global flags
	apiURL    string
	themeName string
	debug     bool

	// Logger for non-interactive commands
	logger *zap.Logger
)

// rootCmd launches the interactive client when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "teentech",
	Short: "Teen Tech - programming lessons in your terminal",
	Long: `Teen Tech is a terminal client for the Teen Tech learning platform.

Students browse lessons and download notebook files; teachers upload new
material. Run without arguments to start the interactive interface, or use
the subcommands for scripted access.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive UI has its own logging; skip zap for it
		if cmd.Use == "teentech" && cmd.CalledAs() == "teentech" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if debug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

// services wires the client stack from config. Every command path goes
// through here so flags and env overrides apply uniformly.
type services struct {
	cfg     config.Config
	store   *session.Store
	client  *api.Client
	auth    *auth.Service
	lessons *lessons.Service
}

func buildServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	if debug {
		cfg.Debug = true
	}

	sessionPath, err := config.SessionFile()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session path: %w", err)
	}
	store, err := session.Open(sessionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	client := api.New(cfg.APIURL, store)
	return &services{
		cfg:     cfg,
		store:   store,
		client:  client,
		auth:    auth.NewService(client, store),
		lessons: lessons.NewService(client),
	}, nil
}

// saveToWorkingDir persists a downloaded notebook next to where the user
// invoked the client.
func saveToWorkingDir(name string, data []byte) error {
	return os.WriteFile(filepath.Clean(name), data, 0o644)
}

func runInteractive() error {
	svcs, err := buildServices()
	if err != nil {
		return err
	}

	if dir, err := config.Dir(); err == nil {
		if err := logging.Initialize(dir, svcs.cfg.Debug); err != nil {
			// Logging is best effort; the UI still works without it
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
		defer logging.CloseAll()
	}

	app := ui.NewApp(ui.Deps{
		Auth:    svcs.auth,
		Lessons: svcs.lessons,
		Save:    saveToWorkingDir,
	}, ui.ThemeByName(svcs.cfg.Theme))

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func main() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", "", "color theme: dark or light")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(uploadCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
