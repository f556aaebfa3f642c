package membership

import (
	"math/rand"
	"testing"
)

func TestSelectGossipDestinationsPrefersUnknownSeeds(t *testing.T) {
	c := NewCluster("node-a:9000", []string{"node-b:9000", "node-c:9000"}, DefaultPhiThreshold)
	rnd := rand.New(rand.NewSource(1))

	destinations := selectGossipDestinations(c, rnd)
	seen := map[string]bool{}
	for _, d := range destinations {
		seen[d.url] = true
	}
	if !seen["node-b:9000"] || !seen["node-c:9000"] {
		t.Fatalf("expected both unresolved seeds to be contacted first, got %+v", destinations)
	}
}

func TestSelectGossipDestinationsCapsAtMax(t *testing.T) {
	c := NewCluster("node-a:9000", []string{"node-b:9000", "node-c:9000", "node-d:9000", "node-e:9000"}, DefaultPhiThreshold)
	rnd := rand.New(rand.NewSource(1))

	destinations := selectGossipDestinations(c, rnd)
	if len(destinations) > maxGossipDestinations {
		t.Fatalf("expected at most %d destinations, got %d", maxGossipDestinations, len(destinations))
	}
}

func TestSelectGossipDestinationsFillsWithKnownMembersOnceSeedsResolve(t *testing.T) {
	c := NewCluster("node-a:9000", nil, DefaultPhiThreshold)
	for i, addr := range []string{"node-b:9000", "node-c:9000", "node-d:9000"} {
		id := NewNodeID(addr, uint64(i+1))
		if err := c.ClusterView.MergeMemberView(c.ThisNodeID, NewJoiningMemberView(id, addr)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rnd := rand.New(rand.NewSource(1))
	destinations := selectGossipDestinations(c, rnd)
	if len(destinations) != maxGossipDestinations {
		t.Fatalf("expected %d destinations once peers are known, got %d", maxGossipDestinations, len(destinations))
	}
	for _, d := range destinations {
		if len(d.payload.Members) == 0 {
			t.Fatalf("expected every destination to carry a non-empty snapshot")
		}
		if d.payload.ThisNodeID != c.ThisNodeID {
			t.Fatalf("expected payload to be sent under this node's identity")
		}
	}
}

func TestSelectGossipDestinationsEmptyClusterIsEmpty(t *testing.T) {
	c := NewCluster("node-a:9000", nil, DefaultPhiThreshold)
	rnd := rand.New(rand.NewSource(1))

	destinations := selectGossipDestinations(c, rnd)
	if len(destinations) != 0 {
		t.Fatalf("expected no destinations for a lone node, got %+v", destinations)
	}
}
