package membership

import (
	"math"
	"sync"
	"time"
)

// heartbeatWindowCapacity is the maximum number of inter-arrival
// intervals retained per peer (§3: FailureDetectorMember).
const heartbeatWindowCapacity = 100

// DefaultPhiThreshold is the suspicion level above which a member is
// considered unreachable (§6 Builder default).
const DefaultPhiThreshold = 8.0

// failureDetectorMember holds the sliding-window heartbeat statistics for
// one peer.
type failureDetectorMember struct {
	lastHeartbeat           uint64
	lastHeartbeatReceivedAt time.Time

	intervals []time.Duration // ring buffer, front = oldest

	hasStats bool
	mean     time.Duration
	stddev   time.Duration
	min      time.Duration
	max      time.Duration
}

func (m *failureDetectorMember) pushInterval(d time.Duration) {
	if len(m.intervals) == heartbeatWindowCapacity {
		m.intervals = m.intervals[1:]
	}
	m.intervals = append(m.intervals, d)
}

func (m *failureDetectorMember) refreshStats() {
	n := len(m.intervals)
	if n == 0 {
		m.hasStats = false
		return
	}
	var sum time.Duration
	min, max := m.intervals[0], m.intervals[0]
	for _, d := range m.intervals {
		sum += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	mean := sum / time.Duration(n)

	var variance float64
	meanSecs := mean.Seconds()
	for _, d := range m.intervals {
		diff := d.Seconds() - meanSecs
		variance += diff * diff
	}
	variance /= float64(n)

	m.mean = mean
	m.stddev = time.Duration(math.Sqrt(variance) * float64(time.Second))
	m.min = min
	m.max = max
	m.hasStats = true
}

// phi computes §4.4's formula. ok is false if fewer than one interval has
// been observed yet (no mean/stddev).
func (m *failureDetectorMember) phi(now time.Time) (float64, bool) {
	if !m.hasStats {
		return 0, false
	}
	x := now.Sub(m.lastHeartbeatReceivedAt).Seconds()
	mu := m.mean.Seconds()
	sigma := m.stddev.Seconds()
	if sigma == 0 {
		// A perfectly regular heartbeat stream: treat any gap past the
		// mean interval as maximally suspicious, anything before it as
		// not suspicious at all, matching the limit of the formula below
		// as sigma -> 0.
		if x < mu {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	}
	y := 0.5 * (mu - x) / (sigma * math.Sqrt2)
	return 1 - math.Log10(y), true
}

// FailureDetector is a phi-accrual detector in the sense of Hayashibara
// et al. (2004), computing per-peer liveness suspicion from heartbeat
// inter-arrival statistics (§4.4). The phi formula is preserved verbatim
// from the source this spec was distilled from; see DESIGN.md for the
// known discrepancy with the textbook CDF-based formula.
type FailureDetector struct {
	mu           sync.RWMutex
	thisNodeID   NodeID
	phiThreshold float64
	members      map[NodeID]*failureDetectorMember
	now          func() time.Time
}

// NewFailureDetector constructs a detector for thisNodeID with the given
// phi suspicion threshold.
func NewFailureDetector(thisNodeID NodeID, phiThreshold float64) *FailureDetector {
	return &FailureDetector{
		thisNodeID:   thisNodeID,
		phiThreshold: phiThreshold,
		members:      map[NodeID]*failureDetectorMember{},
		now:          time.Now,
	}
}

// RecordHeartbeat records an observed heartbeat value for peer. Calls for
// peer == thisNodeID are rejected (self-heartbeats are never gossiped to
// the detector). A non-increasing heartbeat is a MonotonicityViolation
// and is silently ignored (§7).
func (fd *FailureDetector) RecordHeartbeat(peer NodeID, lastHeartbeat uint64) {
	if peer == fd.thisNodeID {
		return
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()

	now := fd.now()
	member, exists := fd.members[peer]
	if !exists {
		fd.members[peer] = &failureDetectorMember{
			lastHeartbeat:           lastHeartbeat,
			lastHeartbeatReceivedAt: now,
		}
		return
	}

	if lastHeartbeat <= member.lastHeartbeat {
		return
	}

	deltaT := now.Sub(member.lastHeartbeatReceivedAt)
	deltaN := uint32(lastHeartbeat - member.lastHeartbeat)
	if deltaN == 0 {
		deltaN = 1
	}
	interval := deltaT / time.Duration(deltaN)
	for i := uint32(0); i < deltaN; i++ {
		member.pushInterval(interval)
	}
	member.refreshStats()

	member.lastHeartbeat = lastHeartbeat
	member.lastHeartbeatReceivedAt = now
}

// Phi returns the current suspicion level for peer, or (0, false) if no
// interval has been observed yet.
func (fd *FailureDetector) Phi(peer NodeID, now time.Time) (float64, bool) {
	fd.mu.RLock()
	defer fd.mu.RUnlock()

	member, ok := fd.members[peer]
	if !ok {
		return 0, false
	}
	return member.phi(now)
}

// IsLive reports whether phi(peer, now) < phiThreshold. Members with no
// phi yet (no interval observed) are treated as live.
func (fd *FailureDetector) IsLive(peer NodeID, now time.Time) bool {
	phi, ok := fd.Phi(peer, now)
	if !ok {
		return true
	}
	return phi < fd.phiThreshold
}

// LiveMembers enumerates peers currently considered live.
func (fd *FailureDetector) LiveMembers(now time.Time) []NodeID {
	fd.mu.RLock()
	defer fd.mu.RUnlock()

	var out []NodeID
	for id, m := range fd.members {
		phi, ok := m.phi(now)
		if !ok || phi < fd.phiThreshold {
			out = append(out, id)
		}
	}
	return out
}

// UnreachableMembers enumerates peers currently considered unreachable.
func (fd *FailureDetector) UnreachableMembers(now time.Time) []NodeID {
	fd.mu.RLock()
	defer fd.mu.RUnlock()

	var out []NodeID
	for id, m := range fd.members {
		phi, ok := m.phi(now)
		if ok && phi >= fd.phiThreshold {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns a deep copy of the detector's state, used by Cluster.Clone
// for consistent snapshots (the actor is the only writer).
func (fd *FailureDetector) Clone() *FailureDetector {
	fd.mu.RLock()
	defer fd.mu.RUnlock()

	out := &FailureDetector{
		thisNodeID:   fd.thisNodeID,
		phiThreshold: fd.phiThreshold,
		members:      make(map[NodeID]*failureDetectorMember, len(fd.members)),
		now:          fd.now,
	}
	for id, m := range fd.members {
		cloned := *m
		cloned.intervals = append([]time.Duration(nil), m.intervals...)
		out.members[id] = &cloned
	}
	return out
}
