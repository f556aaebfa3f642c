package membership

// ClusterView is the CvRDT carrying each member's status, version,
// heartbeat, and the set of nodes that have observed that member's
// current state (§3). Invariants:
//   - for every known member with a non-nil State, VersionVector[id] ==
//     State.Version and Heartbeats[id] == State.Heartbeat
//   - KnownMembers[thisNodeID] always exists with State present
//   - the keys of VersionVector and Heartbeats are subsets of KnownMembers
type ClusterView struct {
	KnownMembers  map[NodeID]MemberView
	VersionVector VersionVector
	Heartbeats    map[NodeID]uint64
}

// NewClusterView builds the initial ClusterView for a freshly-started
// node: just a Joining self-entry. Configured seed URLs are not known
// NodeIDs yet — they live in Cluster.UnknownPeerNodes until a gossip
// response reveals the real identity behind them (§3: a MemberView is
// created either by the local node for itself, or on first incoming
// merge of an unknown NodeId).
func NewClusterView(thisID NodeID, thisAddr string) ClusterView {
	cv := ClusterView{
		KnownMembers:  map[NodeID]MemberView{},
		VersionVector: NewVersionVector(),
		Heartbeats:    map[NodeID]uint64{},
	}
	self := NewJoiningMemberView(thisID, thisAddr)
	cv.KnownMembers[thisID] = self
	cv.VersionVector.RecordVersion(thisID, self.State.Version)
	cv.Heartbeats[thisID] = self.State.Heartbeat
	return cv
}

// MergeMemberView implements §4.3: merge incoming into the resident
// entry for the same logical host, or insert it as a new member, then
// record thisNodeID as having observed the post-merge state, and
// re-project VersionVector/Heartbeats from it.
//
// The resident entry is located by NodeID.SameHost (equal UniqueID, any
// Generation), not by exact key match: two NodeIDs for the same
// advertised URL but different Generation denote the same host across a
// restart (§3), and generation supersession must replace the stale
// entry rather than leave it resident alongside the new one. If
// supersession changes the map key, the stale key's VersionVector and
// Heartbeats entries are dropped along with it.
//
// Because the ObservedBy insertion happens after Merge,
// ClusterView.MergeMemberView is commutative and idempotent even though
// the underlying Merge alone already is (clusterview_test.go).
func (cv *ClusterView) MergeMemberView(thisNodeID NodeID, incoming MemberView) error {
	residentID, exists := cv.residentHostID(incoming.ID)

	var merged MemberView
	if !exists {
		merged = incoming.Clone()
	} else {
		m, err := Merge(cv.KnownMembers[residentID], incoming)
		if err != nil {
			return err
		}
		merged = m
		if residentID != merged.ID {
			delete(cv.KnownMembers, residentID)
			delete(cv.Heartbeats, residentID)
			cv.VersionVector.Delete(residentID)
		}
	}

	if merged.State != nil {
		merged.State.ObservedBy.Add(thisNodeID)
		cv.Heartbeats[merged.ID] = merged.State.Heartbeat
		cv.VersionVector.RecordVersion(merged.ID, merged.State.Version)
	}

	cv.KnownMembers[merged.ID] = merged
	return nil
}

// residentHostID returns the KnownMembers key for the same logical host
// as id, if one is known: an exact match if present, otherwise any
// entry sharing id.UniqueID (a prior boot generation of the same host).
func (cv *ClusterView) residentHostID(id NodeID) (NodeID, bool) {
	if _, ok := cv.KnownMembers[id]; ok {
		return id, true
	}
	for known := range cv.KnownMembers {
		if known.SameHost(id) {
			return known, true
		}
	}
	return NodeID{}, false
}

// Clone returns a deep copy of the ClusterView.
func (cv ClusterView) Clone() ClusterView {
	out := ClusterView{
		KnownMembers:  make(map[NodeID]MemberView, len(cv.KnownMembers)),
		VersionVector: cv.VersionVector.Clone(),
		Heartbeats:    make(map[NodeID]uint64, len(cv.Heartbeats)),
	}
	for id, m := range cv.KnownMembers {
		out.KnownMembers[id] = m.Clone()
	}
	for id, hb := range cv.Heartbeats {
		out.Heartbeats[id] = hb
	}
	return out
}

// MemberIDSet returns the full keyset of KnownMembers, used by the
// convergence predicate to compare against each member's ObservedBy.
func (cv ClusterView) MemberIDSet() NodeIDSet {
	return NewNodeIDSet(keysOf(cv.KnownMembers)...)
}

func keysOf(m map[NodeID]MemberView) []NodeID {
	out := make([]NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}
