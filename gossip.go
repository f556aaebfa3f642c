package membership

import "math/rand"

// maxGossipDestinations (K in §4.5) bounds how many peers a single tick
// contacts.
const maxGossipDestinations = 3

// PartialClusterView is the gossip payload exchanged between two nodes:
// sender identity plus a snapshot of its known members (§4.5, §6).
type PartialClusterView struct {
	ThisNodeID NodeID
	Members    []MemberView
}

// gossipDestination pairs a dial address with the payload to send it.
type gossipDestination struct {
	url     string
	payload PartialClusterView
}

// selectGossipDestinations implements §4.5: unknown seed URLs are
// contacted first to bootstrap identity discovery, then the remainder of
// the K budget is filled with a random sample of known peers. Every
// selected destination carries the same full snapshot of known_members.
func selectGossipDestinations(c *Cluster, rnd *rand.Rand) []gossipDestination {
	snapshot := snapshotMembers(c.ClusterView)
	chosen := map[string]struct{}{}

	var destinations []gossipDestination
	addDestination := func(url string) {
		if url == c.ThisAdvertisedURL {
			return
		}
		if _, dup := chosen[url]; dup {
			return
		}
		chosen[url] = struct{}{}
		destinations = append(destinations, gossipDestination{
			url: url,
			payload: PartialClusterView{
				ThisNodeID: c.ThisNodeID,
				Members:    snapshot,
			},
		})
	}

	for url := range c.UnknownPeerNodes {
		if len(destinations) >= maxGossipDestinations {
			return destinations
		}
		addDestination(url)
	}

	remaining := maxGossipDestinations - len(destinations)
	if remaining <= 0 {
		return destinations
	}

	var candidates []string
	for id, member := range c.ClusterView.KnownMembers {
		if id == c.ThisNodeID {
			continue
		}
		if _, dup := chosen[member.AdvertisedAddr]; dup {
			continue
		}
		candidates = append(candidates, member.AdvertisedAddr)
	}

	rnd.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if remaining > len(candidates) {
		remaining = len(candidates)
	}
	for _, url := range candidates[:remaining] {
		addDestination(url)
	}

	return destinations
}

func snapshotMembers(cv ClusterView) []MemberView {
	out := make([]MemberView, 0, len(cv.KnownMembers))
	for _, m := range cv.KnownMembers {
		out = append(out, m.Clone())
	}
	return out
}
