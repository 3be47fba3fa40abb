package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"scriptpack/internal/config"
	"scriptpack/internal/filewalker"
	"scriptpack/internal/merge"
	"scriptpack/internal/pack"
	"scriptpack/internal/subst"
	"scriptpack/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configPath string

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	env := config.LoadEnv()
	if level, err := zerolog.ParseLevel(env.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("level", env.LogLevel).Msg("Unknown log level, keeping info")
	}

	if err := newRootCmd(env).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(env *config.Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scriptpack",
		Short: "Round-trip tool between game dialog scripts and translator worksheets",
		Long: "scriptpack unpacks structured dialog scripts into flat translator worksheets, " +
			"repacks edited worksheets with tags, width budgets, and punctuation rules reapplied, " +
			"and merges worksheet sets from several languages side by side.",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "project configuration file")

	rootCmd.AddCommand(processCmd(env))
	rootCmd.AddCommand(mergeCmd())
	rootCmd.AddCommand(initCmd())
	return rootCmd
}

func processCmd(env *config.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Unpack record scripts into worksheets, repack worksheets into their records",
		Long: "Each argument is dispatched by extension: record scripts are unpacked into " +
			"sibling worksheets, worksheets are repacked into their sibling records.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			return runProcess(cmd, env, args, outDir)
		},
	}
	cmd.Flags().String("out", "", "write outputs into this directory instead of next to the inputs")
	return cmd
}

func mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <dir> <dir>...",
		Short: "Merge worksheet directories into one side-by-side set",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			return runMerge(cmd, args, outDir)
		},
	}
	cmd.Flags().String("out", "merged", "output directory for merged worksheets")
	return cmd
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write starter scriptpack.yml and .env files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir)
		},
	}
}

// runProcess handles the `process` command.
func runProcess(cmd *cobra.Command, env *config.Env, args []string, outDir string) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	entries, skipped := filewalker.Expand(args)
	if len(entries) == 0 {
		log.Warn().Int("skipped", skipped).Msg("No processable inputs")
		return nil
	}
	log.Info().Int("files", len(entries)).Msg("Starting batch")

	pool := worker.NewPool[filewalker.FileEntry, *pack.Report](env.WorkerCount,
		func(ctx context.Context, entry filewalker.FileEntry) (*pack.Report, error) {
			if entry.Kind == filewalker.Record {
				return pack.Unpack(cfg, entry.Path, outDir)
			}
			return pack.Repack(cfg, entry.Path, outDir)
		},
	)
	results := pool.Execute(ctx, entries)

	done, failed := 0, 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			log.Error().Err(res.Err).Str("file", res.Input.Path).Msg("Processing failed")
		case res.Value != nil:
			done++
			log.Info().
				Str("input", res.Value.Input).
				Str("output", res.Value.Output).
				Int("entries", res.Value.Entries).
				Msg("Processed file")
		}
	}

	log.Info().
		Int("done", done).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("Batch complete")
	return ctx.Err()
}

// runMerge handles the `merge` command.
func runMerge(cmd *cobra.Command, dirs []string, outDir string) error {
	cfg, err := loadProject(cmd)
	if err != nil {
		return err
	}

	written, err := merge.Merge(dirs, outDir, cfg.Newline(), cfg.StrictSequence)
	if err != nil {
		return err
	}

	log.Info().
		Int("files", written).
		Int("dirs", len(dirs)).
		Str("output", outDir).
		Msg("Merge complete")
	return nil
}

// runInit handles the `init` command.
func runInit(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	project, err := projectTemplate()
	if err != nil {
		return err
	}
	if err := writeTemplate(filepath.Join(dir, config.DefaultFile), project); err != nil {
		return err
	}
	return writeTemplate(filepath.Join(dir, ".env"), []byte(envTemplate))
}

// loadProject resolves the --config flag. An explicitly given path must
// exist; the default may be absent.
func loadProject(cmd *cobra.Command) (*config.Project, error) {
	flag := cmd.Root().PersistentFlags().Lookup("config")
	required := flag != nil && flag.Changed
	return config.LoadProject(configPath, required)
}

// writeTemplate writes data to path unless the file already exists.
func writeTemplate(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		log.Warn().Str("path", path).Msg("File exists, not overwriting")
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("Template written")
	return nil
}

// projectTemplate renders a starter configuration with one example per
// table so the field names are discoverable.
func projectTemplate() ([]byte, error) {
	p := config.DefaultProject()
	p.Aliases = map[string]string{"HERO_NAME": "hero"}
	p.TagLengths = map[string]int{"HERO_NAME": 6}
	p.Substitutions = []subst.Rule{{Find: "…", Replace: "..."}}
	p.Overrides = []config.Override{{File: "ev001", Index: 0, Preserve: true}}

	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return append([]byte("# scriptpack project configuration\n"), data...), nil
}

const envTemplate = `# scriptpack environment
LOG_LEVEL=info
WORKER_COUNT=8
`

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}
