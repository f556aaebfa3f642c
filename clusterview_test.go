package membership

import "testing"

func TestNewClusterViewHasOnlySelf(t *testing.T) {
	self := NewNodeID("node-a", 1)
	cv := NewClusterView(self, "node-a")

	if _, ok := cv.KnownMembers[self]; !ok {
		t.Fatalf("expected self to be a known member")
	}
	if len(cv.KnownMembers) != 1 {
		t.Fatalf("expected no seed placeholders, got %d known members", len(cv.KnownMembers))
	}
}

func TestMergeMemberViewInsertsAndTracksObserver(t *testing.T) {
	self := NewNodeID("node-a", 1)
	other := NewNodeID("node-b", 1)
	cv := NewClusterView(self, "node-a")

	incoming := NewJoiningMemberView(other, "node-b")
	if err := cv.MergeMemberView(self, incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := cv.KnownMembers[other]
	if stored.State == nil {
		t.Fatalf("expected state to be present after merge")
	}
	if !stored.State.ObservedBy.Contains(self) {
		t.Fatalf("expected this node to be recorded as an observer")
	}
	if ver, ok := cv.VersionVector.Get(other); !ok || ver != stored.State.Version {
		t.Fatalf("expected VersionVector to be re-projected, got %d ok=%v", ver, ok)
	}
	if cv.Heartbeats[other] != stored.State.Heartbeat {
		t.Fatalf("expected Heartbeats to be re-projected")
	}
}

func TestMergeMemberViewIsIdempotent(t *testing.T) {
	self := NewNodeID("node-a", 1)
	other := NewNodeID("node-b", 1)
	cv := NewClusterView(self, "node-a")

	incoming := NewJoiningMemberView(other, "node-b")
	if err := cv.MergeMemberView(self, incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := cv.KnownMembers[other].State.Version
	beforeObservers := cv.KnownMembers[other].State.ObservedBy.Clone()

	if err := cv.MergeMemberView(self, incoming); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := cv.KnownMembers[other]
	if after.State.Version != before {
		t.Fatalf("expected repeated merge to be a no-op on version, got %d != %d", after.State.Version, before)
	}
	if !after.State.ObservedBy.Equal(beforeObservers) {
		t.Fatalf("expected repeated merge to be a no-op on observers")
	}
}

func TestMergeMemberViewIsCommutativeAcrossTwoIncomingViews(t *testing.T) {
	self := NewNodeID("node-a", 1)
	other := NewNodeID("node-b", 1)
	observer := NewNodeID("node-c", 1)

	first := MemberView{ID: other, AdvertisedAddr: "node-b", State: &MemberViewState{
		Status: StatusUp, Version: 2, Heartbeat: 4, ObservedBy: NewNodeIDSet(other),
	}}
	second := MemberView{ID: other, AdvertisedAddr: "node-b", State: &MemberViewState{
		Status: StatusUp, Version: 2, Heartbeat: 1, ObservedBy: NewNodeIDSet(observer),
	}}

	cvFirst := NewClusterView(self, "node-a")
	if err := cvFirst.MergeMemberView(self, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cvFirst.MergeMemberView(self, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cvSecond := NewClusterView(self, "node-a")
	if err := cvSecond.MergeMemberView(self, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cvSecond.MergeMemberView(self, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := cvFirst.KnownMembers[other]
	b := cvSecond.KnownMembers[other]
	if a.State.Version != b.State.Version || !a.State.ObservedBy.Equal(b.State.ObservedBy) {
		t.Fatalf("expected order of merges to not matter: %+v != %+v", a.State, b.State)
	}
}

func TestMemberIDSetMatchesKnownMembers(t *testing.T) {
	self := NewNodeID("node-a", 1)
	other := NewNodeID("node-b", 1)
	cv := NewClusterView(self, "node-a")
	if err := cv.MergeMemberView(self, NewJoiningMemberView(other, "node-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := cv.MemberIDSet()
	if !ids.Contains(self) || !ids.Contains(other) || len(ids) != 2 {
		t.Fatalf("expected {self, other}, got %+v", ids)
	}
}

func TestMergeMemberViewSupersedesStaleGenerationOnRestart(t *testing.T) {
	self := NewNodeID("node-a", 1)
	otherOldGen := NewNodeID("node-b", 1)
	otherNewGen := NewNodeID("node-b", 2)
	cv := NewClusterView(self, "node-a")

	if err := cv.MergeMemberView(self, NewJoiningMemberView(otherOldGen, "node-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cv.MergeMemberView(self, NewJoiningMemberView(otherNewGen, "node-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := cv.KnownMembers[otherOldGen]; ok {
		t.Fatalf("expected stale generation entry to be evicted")
	}
	if _, ok := cv.KnownMembers[otherNewGen]; !ok {
		t.Fatalf("expected new generation entry to be resident")
	}
	if len(cv.KnownMembers) != 2 {
		t.Fatalf("expected exactly {self, otherNewGen}, got %d known members", len(cv.KnownMembers))
	}
	if _, ok := cv.Heartbeats[otherOldGen]; ok {
		t.Fatalf("expected stale generation Heartbeats entry to be evicted")
	}
	if _, ok := cv.VersionVector.Get(otherOldGen); ok {
		t.Fatalf("expected stale generation VersionVector entry to be evicted")
	}

	// A stale-generation merge arriving after the new generation is
	// already resident must not resurrect it or regress state.
	if err := cv.MergeMemberView(self, NewJoiningMemberView(otherOldGen, "node-b")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cv.KnownMembers[otherOldGen]; ok {
		t.Fatalf("expected stale generation merge to be a no-op")
	}
	if len(cv.KnownMembers) != 2 {
		t.Fatalf("expected stale generation merge not to grow KnownMembers, got %d", len(cv.KnownMembers))
	}
}
