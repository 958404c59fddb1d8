package raft

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/mercurysync/graphrunner/logger"
	"github.com/mercurysync/graphrunner/observability"
	"github.com/mercurysync/graphrunner/resilience"
)

// DefaultQuorumFraction is FLEXIBLE_PAXOS_QUORUM's default value: with
// no override, a candidate needs strictly more than half the cluster to
// accept it (see DESIGN.md for the resolution of the formula
// discrepancy between spec.md and the Python original).
const DefaultQuorumFraction = 0.5

// Config configures a Controller's timeouts and identity. Bound from
// the MERCURY_SYNC_RAFT_* environment variables described in spec.md
// §6 via config.GraphRunnerConfig.
type Config struct {
	Self Member

	QuorumFraction float64

	MinElectionTimeout     time.Duration
	MaxElectionTimeout     time.Duration
	ElectionPollInterval   time.Duration
	LogsUpdatePollInterval time.Duration
}

// ApplyDefaults fills zero-valued fields, mirroring the Python
// original's `_min_election_timeout = max(_max_election_timeout * 0.5, 1)`
// derivation when only a max timeout is supplied.
func (c *Config) ApplyDefaults() {
	if c.QuorumFraction <= 0 {
		c.QuorumFraction = DefaultQuorumFraction
	}
	if c.MaxElectionTimeout <= 0 {
		c.MaxElectionTimeout = 2 * time.Second
	}
	if c.MinElectionTimeout <= 0 {
		min := time.Duration(float64(c.MaxElectionTimeout) * 0.5)
		if min < time.Second {
			min = time.Second
		}
		c.MinElectionTimeout = min
	}
	if c.ElectionPollInterval <= 0 {
		c.ElectionPollInterval = 500 * time.Millisecond
	}
	if c.LogsUpdatePollInterval <= 0 {
		c.LogsUpdatePollInterval = time.Second
	}
}

// Controller is the embedded RAFT coordinator for one node: leader
// election, log replication, and membership monitoring. Structurally
// grounded in hedra/distributed/raft/raft_controller.py's RaftController,
// translated into explicit state (NodeState, ElectionState) rather than
// the Python original's ad hoc instance attributes.
type Controller struct {
	cfg       Config
	monitor   *Monitor
	log       *Log
	snowflake *Snowflake
	transport Transport
	logger    *logger.Logger

	mu            sync.Mutex
	term          Term
	nodeState     NodeState
	electionState ElectionState
	termLeaders   []Member
}

// NewController wires a Controller from its membership monitor, log,
// and transport. The node starts as a Follower with ElectionState Ready
// and itself as the sole term leader, matching the Python original's
// `_term_leaders = [(self.host, self.port)]` initialization.
func NewController(cfg Config, monitor *Monitor, transport Transport, log *logger.Logger) *Controller {
	cfg.ApplyDefaults()
	return &Controller{
		cfg:           cfg,
		monitor:       monitor,
		log:           NewLog(),
		snowflake:     NewSnowflake(NextInstanceID()),
		transport:     transport,
		logger:        log.WithComponent("raft"),
		nodeState:     Follower,
		electionState: Ready,
		termLeaders:   []Member{cfg.Self},
	}
}

// Term returns the controller's current term.
func (c *Controller) Term() Term {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.term
}

// NodeState returns the controller's current role.
func (c *Controller) NodeState() NodeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodeState
}

// Log returns the controller's replicated log, for inspection/tests.
func (c *Controller) Log() *Log { return c.log }

// SetTransport binds the Transport this controller dispatches RPCs
// through. Separate from NewController because a NetTransport needs a
// Handler (this Controller) to construct, and a Controller needs a
// Transport to operate — callers build the Controller first, then the
// Transport, then wire the two together.
func (c *Controller) SetTransport(t Transport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transport = t
}

// Run starts the background election-monitor and (while leader)
// log-replication loops until ctx is canceled.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.LogsUpdatePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick is one iteration of the Python original's `_run_raft_monitor`
// loop: a leader fans out append_entries to every healthy member; a
// follower that observes a failed member starts an election.
func (c *Controller) tick(ctx context.Context) {
	if c.NodeState() == Leader {
		for _, mem := range c.monitor.Healthy() {
			go func(mem Member) {
				if err := c.updateLogs(ctx, mem, nil); err != nil {
					c.logger.Debug("replication failed", logger.Fields("member", mem.String(), "error", err.Error()))
				}
			}(mem)
		}
		return
	}

	if len(c.monitor.Failed()) > 0 {
		if err := c.RunElection(ctx); err != nil {
			c.logger.Warn("election failed", logger.ErrorFields("run_election", err))
		}
	}
}

// quorum computes ceil(N*(1-Q))+1, per spec.md §4.7's explicit formula.
func quorum(n int, q float64) int {
	return int(math.Ceil(float64(n)*(1-q))) + 1
}

// RunElection triggers a new election round: bumps the term, votes for
// itself, broadcasts RequestVote to every healthy member, and becomes
// Leader if at least quorum() members accept within a randomized
// election timeout.
func (c *Controller) RunElection(ctx context.Context) error {
	return observabilitySpan(ctx, "raft.run_election", func(ctx context.Context) error {
		c.mu.Lock()
		c.term++
		myTerm := c.term
		c.electionState = Active
		c.nodeState = Candidate
		c.mu.Unlock()

		members := c.monitor.Healthy()
		timeout := randomDuration(c.cfg.MinElectionTimeout, c.cfg.MaxElectionTimeout)

		electionCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		results := make(chan bool, len(members))

		for _, mem := range members {
			go func(mem Member) {
				req := &Message{
					Host: mem.Host, Port: mem.Port,
					SourceHost: c.cfg.Self.Host, SourcePort: c.cfg.Self.Port,
					Term: myTerm,
				}
				resp, err := resilience.Retry(electionCtx, resilience.RetryConfig{MaxAttempts: 2}, func() (*Message, error) {
					return c.transport.RequestVote(electionCtx, mem, req)
				})
				results <- err == nil && resp.ElectionStatus == Accepted
			}(mem)
		}

		accepted := 1 // vote for self
	collectVotes:
		for i := 0; i < len(members); i++ {
			select {
			case ok := <-results:
				if ok {
					accepted++
				}
			case <-electionCtx.Done():
				break collectVotes
			}
		}

		need := quorum(len(members)+1, c.cfg.QuorumFraction)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.electionState = Ready
		if accepted >= need {
			c.nodeState = Leader
			c.termLeaders = append(c.termLeaders, c.cfg.Self)
			c.logger.Info("elected leader", logger.Fields(logger.FieldRaftTerm, int64(myTerm)))
		} else {
			c.nodeState = Follower
		}
		return nil
	})
}

func randomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}

// HandleVoteRequest answers an inbound RequestVote, implementing the
// receive_vote_request decision table from the Python original exactly:
// an in-progress local election is reported Pending; a higher term is
// accepted outright; an equal term is resolved by picking a random
// healthy member (which may be the candidate itself); a lower term is
// rejected.
func (c *Controller) HandleVoteRequest(ctx context.Context, req *Message) *Message {
	source := Member{Host: req.SourceHost, Port: req.SourcePort}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp := &Message{
		Host: req.SourceHost, Port: req.SourcePort,
		SourceHost: c.cfg.Self.Host, SourcePort: c.cfg.Self.Port,
		Term: req.Term,
	}

	if c.electionState == Active || c.electionState == Pending {
		resp.ElectionStatus = Pending
		return resp
	}

	var elected Member
	switch {
	case req.Term > c.term:
		c.electionState = Active
		c.term = req.Term
		elected = source
	case req.Term == c.term:
		c.electionState = Active
		candidates := append(c.monitor.Healthy(), source)
		elected = candidates[rand.Intn(len(candidates))]
	default:
		resp.ElectionStatus = Rejected
		return resp
	}

	if elected == source {
		resp.ElectionStatus = Accepted
	} else {
		resp.ElectionStatus = Rejected
	}
	return resp
}

// AppendLocal assigns Snowflake ids and the current term to new
// payloads and appends them to this controller's own log — used by a
// Leader originating new entries before fanning them out via tick's
// replication loop.
func (c *Controller) AppendLocal(payloads [][]byte) []LogEntry {
	c.mu.Lock()
	term := c.term
	c.mu.Unlock()

	entries := make([]LogEntry, len(payloads))
	for i, p := range payloads {
		entries[i] = LogEntry{EntryID: c.snowflake.Generate(), Term: term, Payload: p}
	}
	c.log.Append(entries...)
	return entries
}

// HandleAppendEntries answers an inbound append_entries call,
// implementing receive_log_update: entries are sorted by EntryID (the
// Snowflake id recovers send order) and appended by Log.Update, which
// does not check contiguity; a duplicate-id-different-term conflict is
// reported back
// as an error alongside the most recently recognized elected leader.
func (c *Controller) HandleAppendEntries(ctx context.Context, req *Message) *Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp := &Message{
		Host: req.Host, Port: req.Port,
		SourceHost: c.cfg.Self.Host, SourcePort: c.cfg.Self.Port,
		ElectionStatus: c.electionState,
		NodeStatus:     c.nodeState,
		Term:           c.term,
	}

	if len(req.Entries) == 0 {
		return resp
	}

	if err := c.log.Update(req.Entries); err != nil {
		resp.Error = err.Error()
		if len(c.termLeaders) > 0 {
			resp.ElectedLeader = c.termLeaders[len(c.termLeaders)-1]
		}
		return resp
	}

	return resp
}

// updateLogs is the client side of log replication: submit_log_update
// plus _update_logs' post-processing. A zero-value ElectedLeader in the
// response (the Go analog of Python's `None`) is treated as "no
// change", per spec.md §9's explicit instruction for open question #3.
func (c *Controller) updateLogs(ctx context.Context, to Member, payloads [][]byte) error {
	entries := c.AppendLocal(payloads)

	req := &Message{
		Host: to.Host, Port: to.Port,
		SourceHost: c.cfg.Self.Host, SourcePort: c.cfg.Self.Port,
		Entries: entries,
	}

	resp, err := c.transport.AppendEntries(ctx, to, req)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	currentLeader := c.cfg.Self
	if len(c.termLeaders) > 0 {
		currentLeader = c.termLeaders[len(c.termLeaders)-1]
	}

	if resp.Error != "" && !resp.ElectedLeader.Empty() && resp.ElectedLeader != currentLeader {
		c.termLeaders = append(c.termLeaders, resp.ElectedLeader)
		c.term = resp.Term
	}
	return nil
}

// observabilitySpan wraps fn in a traced span named for the RPC it
// instruments, per provider/tracing.go's pattern of wrapping RPC-shaped
// calls with StartSpan/SetSpanError.
func observabilitySpan(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, name)
	defer span.End()
	if err := fn(ctx); err != nil {
		observability.SetSpanError(ctx, err)
		return err
	}
	return nil
}

var _ Handler = (*Controller)(nil)
