package config

import (
	"fmt"
	"time"
)

// GraphRunnerConfig binds the environment variables spec.md §6 names
// for the RAFT coordinator and process-lifecycle ambient concerns,
// following ServiceConfig's embedding convention so cmd/graphrunner
// gets the standard name/environment/logging fields for free.
type GraphRunnerConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// LogsDirectory is MERCURY_SYNC_LOGS_DIRECTORY.
	LogsDirectory string `yaml:"logs_directory" mapstructure:"logs_directory" validate:"required"`

	// RaftElectionMaxTimeout/MinTimeout/PollInterval/LogsUpdatePollInterval
	// are MERCURY_SYNC_RAFT_ELECTION_MAX_TIMEOUT/_MIN_TIMEOUT/_POLL_INTERVAL
	// /_LOGS_UPDATE_POLL_INTERVAL.
	RaftElectionMaxTimeout        time.Duration `yaml:"raft_election_max_timeout" mapstructure:"raft_election_max_timeout"`
	RaftElectionMinTimeout        time.Duration `yaml:"raft_election_min_timeout" mapstructure:"raft_election_min_timeout"`
	RaftElectionPollInterval      time.Duration `yaml:"raft_election_poll_interval" mapstructure:"raft_election_poll_interval"`
	RaftLogsUpdatePollInterval    time.Duration `yaml:"raft_logs_update_poll_interval" mapstructure:"raft_logs_update_poll_interval"`
	RaftQuorumFraction            float64       `yaml:"raft_quorum_fraction" mapstructure:"raft_quorum_fraction" validate:"gte=0,lte=1"`

	// BootWait is MERCURY_SYNC_BOOT_WAIT and CleanupInterval is
	// MERCURY_SYNC_CLEANUP_INTERVAL. Both are loaded and defaulted here;
	// no other package reads them.
	BootWait time.Duration `yaml:"boot_wait" mapstructure:"boot_wait"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`

	// UseUDPMulticast is MERCURY_SYNC_USE_UDP_MULTICAST and UseHTTPServer
	// is MERCURY_SYNC_USE_HTTP_SERVER. Both are loaded here; no other
	// package reads them (vote requests always go one datagram per
	// member, and no HTTP server is started).
	UseUDPMulticast bool `yaml:"use_udp_multicast" mapstructure:"use_udp_multicast"`
	UseHTTPServer bool `yaml:"use_http_server" mapstructure:"use_http_server"`

	// SelfHost/SelfPort identify this node's RAFT control-channel address.
	SelfHost string `yaml:"self_host" mapstructure:"self_host" validate:"required"`
	SelfPort int    `yaml:"self_port" mapstructure:"self_port" validate:"required,min=1"`

	// DiscoveryServiceName names the service peers register under.
	DiscoveryServiceName string `yaml:"discovery_service_name" mapstructure:"discovery_service_name"`

	// RaftPeers lists the cluster's other members as "host:port" pairs,
	// seeded into the static discovery provider backing the RAFT
	// Monitor when no Consul registry is configured.
	RaftPeers []string `yaml:"raft_peers" mapstructure:"raft_peers"`
}

// ApplyDefaults fills zero-valued fields, delegating the embedded
// ServiceConfig fields first.
func (c *GraphRunnerConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()

	if c.LogsDirectory == "" {
		c.LogsDirectory = "/var/log/graphrunner"
	}
	if c.RaftElectionMaxTimeout <= 0 {
		c.RaftElectionMaxTimeout = 2 * time.Second
	}
	if c.RaftElectionMinTimeout <= 0 {
		c.RaftElectionMinTimeout = time.Second
	}
	if c.RaftElectionPollInterval <= 0 {
		c.RaftElectionPollInterval = 500 * time.Millisecond
	}
	if c.RaftLogsUpdatePollInterval <= 0 {
		c.RaftLogsUpdatePollInterval = time.Second
	}
	if c.RaftQuorumFraction <= 0 {
		c.RaftQuorumFraction = 0.5
	}
	if c.BootWait <= 0 {
		c.BootWait = 3 * time.Second
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 30 * time.Second
	}
	if c.DiscoveryServiceName == "" {
		c.DiscoveryServiceName = "graphrunner"
	}
	if c.SelfHost == "" {
		c.SelfHost = "127.0.0.1"
	}
}

// Validate validates the embedded ServiceConfig and the RAFT-specific
// fields.
func (c *GraphRunnerConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if c.LogsDirectory == "" {
		return fmt.Errorf("config.logs_directory is required")
	}
	if c.SelfPort <= 0 {
		return fmt.Errorf("config.self_port must be > 0")
	}
	if c.RaftElectionMinTimeout > c.RaftElectionMaxTimeout {
		return fmt.Errorf("config.raft_election_min_timeout must be <= raft_election_max_timeout")
	}
	return nil
}
