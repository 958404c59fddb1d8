package raft

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mercurysync/graphrunner/discovery"
	"github.com/mercurysync/graphrunner/logger"
)

// memberHealth is Monitor's local gossip-style view of one member,
// grounded in discovery/consul.go's ServiceInstance/HealthStatus model:
// healthy members are candidates for vote requests and log replication,
// suspect members are kept but not dispatched to, failed members
// trigger an election.
type memberHealth string

const (
	healthHealthy memberHealth = "healthy"
	healthSuspect memberHealth = "suspect"
	healthFailed  memberHealth = "failed"
)

// Monitor maintains the healthy/suspect/failed membership view a
// Controller consults before every election and replication round. It
// wraps a discovery.Discovery so membership can be backed by the same
// Consul-based registry the rest of the stack uses (discovery/consul)
// or, in tests, the in-memory discovery/static provider.
type Monitor struct {
	serviceName string
	discovery   discovery.Discovery
	log         *logger.Logger

	pollInterval time.Duration

	mu       sync.RWMutex
	status   map[Member]memberHealth
	missed   map[Member]int
	selfAddr Member
}

// suspectThreshold is the number of consecutive missed polls before a
// member is marked failed rather than merely suspect.
const suspectThreshold = 2

// NewMonitor constructs a Monitor over the named service, backed by the
// given discovery.Discovery. self is excluded from its own failed/healthy
// bookkeeping (a node does not gossip about itself).
func NewMonitor(serviceName string, d discovery.Discovery, self Member, pollInterval time.Duration, log *logger.Logger) *Monitor {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Monitor{
		serviceName:  serviceName,
		discovery:    d,
		selfAddr:     self,
		pollInterval: pollInterval,
		status:       make(map[Member]memberHealth),
		missed:       make(map[Member]int),
		log:          log.WithComponent("raft.monitor"),
	}
}

// Run polls the discovery backend until ctx is canceled, refreshing the
// membership view on each tick.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// Poll runs one synchronous discovery refresh, returning the underlying
// discovery error (if any) so callers — tests in particular — can seed
// or force-refresh the membership view without waiting on Run's ticker.
func (m *Monitor) Poll(ctx context.Context) error {
	return m.poll(ctx)
}

func (m *Monitor) poll(ctx context.Context) error {
	instances, err := m.discovery.Discover(ctx, m.serviceName)
	if err != nil {
		m.log.Warn("discover failed", logger.ErrorFields("discover", err))
		m.markAllMissed()
		return err
	}

	seen := make(map[Member]bool, len(instances))
	m.mu.Lock()
	for _, inst := range instances {
		mem := Member{Host: inst.Address, Port: inst.Port}
		if mem == m.selfAddr {
			continue
		}
		seen[mem] = true
		if inst.Health == discovery.HealthHealthy {
			m.status[mem] = healthHealthy
			m.missed[mem] = 0
		} else {
			m.bumpMissed(mem)
		}
	}
	for mem := range m.status {
		if !seen[mem] {
			m.bumpMissed(mem)
		}
	}
	m.mu.Unlock()
	return nil
}

// bumpMissed must be called with mu held.
func (m *Monitor) bumpMissed(mem Member) {
	m.missed[mem]++
	if m.missed[mem] >= suspectThreshold {
		m.status[mem] = healthFailed
	} else {
		m.status[mem] = healthSuspect
	}
}

func (m *Monitor) markAllMissed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for mem := range m.status {
		m.bumpMissed(mem)
	}
}

// Healthy returns the members currently considered healthy, sorted for
// deterministic iteration.
func (m *Monitor) Healthy() []Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Member
	for mem, st := range m.status {
		if st == healthHealthy {
			out = append(out, mem)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Host != out[j].Host {
			return out[i].Host < out[j].Host
		}
		return out[i].Port < out[j].Port
	})
	return out
}

// Failed returns the members currently considered failed.
func (m *Monitor) Failed() []Member {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Member
	for mem, st := range m.status {
		if st == healthFailed {
			out = append(out, mem)
		}
	}
	return out
}

// Register seeds the view with a member as healthy, used when a node
// first joins before its first poll completes.
func (m *Monitor) Register(mem Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[mem] = healthHealthy
	m.missed[mem] = 0
}
