package membership

// MemberViewState carries everything known about a member at a specific
// version: its status, that version, its last-seen heartbeat, and the set
// of nodes that have observed this exact (id, generation, version) tuple.
// ObservedBy is the basis of the convergence predicate (§4.6): a cluster
// has converged once every member's ObservedBy equals the full keyset of
// known_members.
type MemberViewState struct {
	Status     NodeStatus
	Version    uint16
	Heartbeat  uint64
	ObservedBy NodeIDSet
}

func (s MemberViewState) clone() MemberViewState {
	return MemberViewState{
		Status:     s.Status,
		Version:    s.Version,
		Heartbeat:  s.Heartbeat,
		ObservedBy: s.ObservedBy.Clone(),
	}
}

// MemberView is a view of how the running node sees one member (itself
// included). State is absent only for freshly-learned peers whose full
// record has not yet arrived.
type MemberView struct {
	ID             NodeID
	AdvertisedAddr string
	State          *MemberViewState
}

// NewJoiningMemberView builds the initial self-view created at startup:
// status Joining, version 1, heartbeat 0, observed only by itself.
func NewJoiningMemberView(id NodeID, advertisedAddr string) MemberView {
	return MemberView{
		ID:             id,
		AdvertisedAddr: advertisedAddr,
		State: &MemberViewState{
			Status:     StatusJoining,
			Version:    1,
			Heartbeat:  0,
			ObservedBy: NewNodeIDSet(id),
		},
	}
}

// NewUnknownMemberView builds a stateless view for a freshly-learned peer
// whose full record has not yet arrived. Configured seeds are not given
// such placeholders (see NewClusterView).
func NewUnknownMemberView(id NodeID, advertisedAddr string) MemberView {
	return MemberView{ID: id, AdvertisedAddr: advertisedAddr}
}

// Clone returns a deep copy of the view.
func (m MemberView) Clone() MemberView {
	out := MemberView{ID: m.ID, AdvertisedAddr: m.AdvertisedAddr}
	if m.State != nil {
		cloned := m.State.clone()
		out.State = &cloned
	}
	return out
}

func maxU64(a, b uint64) uint64 {
	if b > a {
		return b
	}
	return a
}

// Merge implements §4.2. self and incoming must carry the same
// NodeID.UniqueID; callers that violate this get ErrUnrelatedMemberMerge
// back with self left unmodified. Merge is commutative, associative and
// idempotent (memberview_test.go).
func Merge(self, incoming MemberView) (MemberView, error) {
	if self.ID.UniqueID != incoming.ID.UniqueID {
		return self, ErrUnrelatedMemberMerge
	}

	// 1. Generation supersession.
	if incoming.ID.Generation > self.ID.Generation {
		return incoming.Clone(), nil
	}
	if incoming.ID.Generation < self.ID.Generation {
		return self, nil
	}

	out := self.Clone()

	// 2. Adopt incoming state if self has none.
	if out.State == nil && incoming.State != nil {
		adopted := incoming.State.clone()
		out.State = &adopted
		return out, nil
	}
	if incoming.State == nil {
		return out, nil
	}

	sv := out.State
	iv := incoming.State

	switch {
	case iv.Version > sv.Version:
		out.State = &MemberViewState{
			Status:     iv.Status,
			Version:    iv.Version,
			Heartbeat:  maxU64(sv.Heartbeat, iv.Heartbeat),
			ObservedBy: iv.ObservedBy.Clone(),
		}
	case iv.Version < sv.Version:
		out.State = &MemberViewState{
			Status:     sv.Status,
			Version:    sv.Version,
			Heartbeat:  maxU64(sv.Heartbeat, iv.Heartbeat),
			ObservedBy: sv.ObservedBy.Clone(),
		}
	default: // iv.Version == sv.Version
		if sv.Status != iv.Status {
			out.State = &MemberViewState{
				Status:     maxStatus(sv.Status, iv.Status),
				Version:    sv.Version + 1,
				Heartbeat:  maxU64(sv.Heartbeat, iv.Heartbeat),
				ObservedBy: NodeIDSet{},
			}
		} else {
			out.State = &MemberViewState{
				Status:     sv.Status,
				Version:    sv.Version,
				Heartbeat:  maxU64(sv.Heartbeat, iv.Heartbeat),
				ObservedBy: sv.ObservedBy.Union(iv.ObservedBy),
			}
		}
	}

	return out, nil
}
