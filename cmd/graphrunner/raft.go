package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mercurysync/graphrunner/config"
	"github.com/mercurysync/graphrunner/discovery"
	"github.com/mercurysync/graphrunner/discovery/static"
	"github.com/mercurysync/graphrunner/logger"
	graphRaft "github.com/mercurysync/graphrunner/raft"
	"github.com/spf13/cobra"
)

// newRaftCmd groups the RAFT coordinator's own lifecycle commands,
// separate from the graph-execution run/check/graph surface: the
// coordinator is a long-running cluster peer, not a one-shot graph run.
func newRaftCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "raft",
		Short: "Run this node's embedded RAFT coordinator",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the RAFT coordinator and block until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return &cliError{code: exitRuntime, err: err}
			}
			return runRaftController(cmd.Context(), cfg)
		},
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "path to a graphrunner config file (YAML)")

	cmd.AddCommand(runCmd)
	return cmd
}

// runRaftController boots a Monitor (backed by the static discovery
// provider seeded from RaftPeers), a NetTransport bound to self's
// control-channel address, and a Controller, then blocks until a
// termination signal arrives.
func runRaftController(ctx context.Context, cfg *config.GraphRunnerConfig) error {
	log := logger.NewDefault(cfg.Name)

	self := graphRaft.Member{Host: cfg.SelfHost, Port: cfg.SelfPort}

	endpoints := make([]discovery.StaticEndpoint, 0, len(cfg.RaftPeers)+1)
	endpoints = append(endpoints, discovery.StaticEndpoint{
		Name: cfg.DiscoveryServiceName, Address: self.Host, Port: self.Port, Healthy: true,
	})
	for _, peer := range cfg.RaftPeers {
		host, portStr, found := strings.Cut(peer, ":")
		if !found {
			return &cliError{code: exitRuntime, err: fmt.Errorf("raft: invalid peer address %q, want host:port", peer)}
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return &cliError{code: exitRuntime, err: fmt.Errorf("raft: invalid peer port in %q: %w", peer, err)}
		}
		endpoints = append(endpoints, discovery.StaticEndpoint{
			Name: cfg.DiscoveryServiceName, Address: host, Port: port, Healthy: true,
		})
	}

	monitor := graphRaft.NewMonitor(cfg.DiscoveryServiceName, static.NewProvider(endpoints), self, cfg.RaftElectionPollInterval, log)

	ctrl := graphRaft.NewController(graphRaft.Config{
		Self:                   self,
		QuorumFraction:         cfg.RaftQuorumFraction,
		MinElectionTimeout:     cfg.RaftElectionMinTimeout,
		MaxElectionTimeout:     cfg.RaftElectionMaxTimeout,
		ElectionPollInterval:   cfg.RaftElectionPollInterval,
		LogsUpdatePollInterval: cfg.RaftLogsUpdatePollInterval,
	}, monitor, nil, log)

	transport, err := graphRaft.NewNetTransport(self, ctrl, log)
	if err != nil {
		return &cliError{code: exitRuntime, err: fmt.Errorf("raft: start transport: %w", err)}
	}
	defer transport.Close()
	ctrl.SetTransport(transport)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go monitor.Run(sigCtx)
	go ctrl.Run(sigCtx)

	log.Info("raft coordinator started", logger.Fields("self", self.String()))
	<-sigCtx.Done()
	log.Info("raft coordinator stopping")
	return nil
}
