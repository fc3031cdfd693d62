package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jacoelho/ndparse/internal/config"
	"github.com/jacoelho/ndparse/internal/exit"
	"github.com/jacoelho/ndparse/internal/profile"
	"github.com/jacoelho/ndparse/internal/runner"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, logger: zap.NewNop()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	result := exit.FromError(err, a.failed)
	result.Output = stderr
	result.Print()
	return result.ExitCode
}

// app holds the state shared by the commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	debug  bool
	logger *zap.Logger
	failed bool
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ndparse",
		Short: "Parse bracketed text into N-dimensional arrays",
		Long: `ndparse reads nested, delimited text such as [[1,2,3],[4,5,6]] and
reports the flat elements together with the array shape. The shape is
either declared with --shape or inferred from the nesting.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if a.debug {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}

			logger, err := cfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging of checkpoints and rollbacks")
	root.AddCommand(a.parseCmd(), a.profileCmd())
	return root
}

func (a *app) parseCmd() *cobra.Command {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "parse [flags] <input>...",
		Short: "Parse one or more inputs ('-' reads standard input)",
		Example: `  ndparse parse matrix.txt
  ndparse parse --shape 2,3 matrix.txt
  echo '[(1+2)*3, 4]' | ndparse parse -
  ndparse parse --select '$[*][0]' --format json *.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Inputs = args
			if err := cfg.Validate(); err != nil {
				return err
			}

			prof := profile.Default()
			if cfg.ProfileFile != "" {
				loaded, err := profile.Load(cfg.ProfileFile)
				if err != nil {
					return err
				}
				prof = loaded
			}

			r, err := runner.New(cfg, prof, runner.WithLogger(a.logger), runner.WithStdin(a.stdin))
			if err != nil {
				return err
			}

			summary, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := summary.Write(a.stdout, cfg.Format); err != nil {
				return err
			}
			a.failed = summary.HasFailures()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Var(config.ShapeValue{Shape: &cfg.Shape}, "shape", "Declared shape, e.g. 2,3 (default: infer from nesting)")
	flags.StringVar(&cfg.ProfileFile, "profile", "", "Path to a YAML delimiter profile")
	flags.Var(config.FormatValue{Format: &cfg.Format}, "format", "Output format: text, json or yaml")
	flags.StringVar(&cfg.Select, "select", "", "JSONPath applied to each parsed array, e.g. '$[0]'")
	flags.IntVar(&cfg.Concurrency, "concurrency", config.DefaultConcurrency, "Number of inputs parsed in parallel")
	flags.Float64Var(&cfg.RateLimit, "rate-limit", 0, "Inputs started per second (0 for unlimited)")

	return cmd
}

func (a *app) profileCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the default profile, or validate and print --file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prof := profile.Default()
			if path != "" {
				loaded, err := profile.Load(path)
				if err != nil {
					return err
				}
				prof = loaded
			}
			return profile.Encode(a.stdout, prof)
		},
	}

	cmd.Flags().StringVar(&path, "file", "", "Profile to validate")
	return cmd
}
