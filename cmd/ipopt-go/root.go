package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hsiuhsiu/ipopt-go/pkg/ipopt/logging"
)

const envPrefix = "IPOPT_"

type cli struct {
	logLevel  string
	logFormat string
	logFile   string
	envFile   string

	zap    *zap.Logger
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "ipopt-go",
		Short: "Solve nonlinear programs with Ipopt",
		Long: `ipopt-go drives the Ipopt interior-point solver on the bundled
benchmark problems. Solver options come from a YAML file, repeated
--int/--num/--str flags, and IPOPT_* environment variables.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.zap != nil {
				_ = c.zap.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.StringVar(&c.logFormat, "log-format", "console", "Log format on stderr (console, json)")
	pf.StringVar(&c.logFile, "log-file", "", "Also write JSON logs to this file, rotated")
	pf.StringVar(&c.envFile, "env-file", ".env", "Load IPOPT_* variables from this file if it exists")

	root.AddCommand(newSolveCmd(c), newProblemsCmd(), newVersionCmd())
	return root
}

// setup loads the env file, applies environment defaults to unset flags and
// builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := c.loadEnv(cmd); err != nil {
		return err
	}
	if err := applyEnv(cmd.Flags()); err != nil {
		return err
	}

	level, err := zapcore.ParseLevel(c.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	var json bool
	switch c.logFormat {
	case "console":
	case "json":
		json = true
	default:
		return fmt.Errorf("invalid --log-format %q", c.logFormat)
	}

	cores := []zapcore.Core{logging.NewZapCore(zapcore.AddSync(cmd.ErrOrStderr()), level, json)}
	if c.logFile != "" {
		cores = append(cores, logging.NewZapCore(logging.NewFileWriter(c.logFile, logging.FileWriterConfig{}), level, true))
	}
	c.zap = zap.New(zapcore.NewTee(cores...))
	c.logger = logging.NewZap(c.zap)
	return nil
}

func (c *cli) loadEnv(cmd *cobra.Command) error {
	if c.envFile == "" {
		return nil
	}
	err := godotenv.Load(c.envFile)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// applyEnv sets every flag the user did not pass from IPOPT_<FLAG>, with
// dashes turned into underscores.
func applyEnv(flags *pflag.FlagSet) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "env-file" {
			return
		}
		key := envPrefix + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return
		}
		if err := setFromEnv(flags, f, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	})
	return errors.Join(errs...)
}

// setFromEnv splits comma-separated values for repeatable flags.
func setFromEnv(flags *pflag.FlagSet, f *pflag.Flag, v string) error {
	if _, ok := f.Value.(pflag.SliceValue); ok {
		for _, item := range strings.Split(v, ",") {
			if err := flags.Set(f.Name, strings.TrimSpace(item)); err != nil {
				return err
			}
		}
		return nil
	}
	return flags.Set(f.Name, v)
}
