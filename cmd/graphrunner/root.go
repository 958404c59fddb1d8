package main

import (
	"fmt"

	"github.com/mercurysync/graphrunner/config"
	"github.com/mercurysync/graphrunner/graph"
	"github.com/mercurysync/graphrunner/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exitAssembly/exitRuntime/exitCheckFailure are spec.md §6's CLI exit
// codes: 0 success, 1 assembly error, 2 runtime error, 3 check failure.
const (
	exitSuccess      = 0
	exitAssembly     = 1
	exitRuntime      = 2
	exitCheckFailure = 3
)

// cliError carries the exit code a failed command should report,
// alongside the error cobra prints to stderr.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return exitRuntime
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "graphrunner",
		Short:         "Assemble and execute stage-DAG performance test graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Only `raft run` reads a GraphRunnerConfig, so its --config flag is
	// declared locally on that subcommand rather than as a persistent
	// flag here.
	root.AddCommand(newRunCmd(), newCheckCmd(), newGraphCmd(), newRaftCmd())
	return root
}

// loadConfig binds a GraphRunnerConfig via viper: config file (if any),
// then MERCURY_SYNC_* environment variables, per SPEC_FULL.md §7's
// viper.AutomaticEnv() convention.
func loadConfig(configFile string) (*config.GraphRunnerConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("MERCURY_SYNC")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg config.GraphRunnerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// assemble loads a manifest and runs it through the Graph Assembler,
// reporting an AssemblyError (exit code 1) distinctly from a load error.
func assemble(path string) (*graph.Graph, *logger.Logger, error) {
	log := logger.NewDefault("graphrunner")

	manifest, err := graph.LoadManifest(path)
	if err != nil {
		return nil, log, &cliError{code: exitRuntime, err: err}
	}

	g, _, err := manifest.Build()
	if err != nil {
		return nil, log, &cliError{code: exitAssembly, err: err}
	}
	return g, log, nil
}
