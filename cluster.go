package membership

import "time"

// Cluster is the full membership state owned by the MembershipActor (§3).
// Readers only ever see snapshots obtained through Instance.Cluster; the
// actor is the sole writer.
type Cluster struct {
	ThisNodeID        NodeID
	ThisAdvertisedURL string
	ClusterView       ClusterView
	PeerNodes         map[string]struct{}
	UnknownPeerNodes  map[string]struct{}
	FailureDetector   *FailureDetector
}

// NewCluster builds the initial Cluster for a node starting at
// advertisedURL with the given configured peer URLs. unknownPeerNodes
// starts equal to the seed URLs minus the local URL (§3).
func NewCluster(advertisedURL string, peerURLs []string, phiThreshold float64) *Cluster {
	thisID := NewNodeID(advertisedURL, nowUnix())

	peerNodes := map[string]struct{}{}
	unknown := map[string]struct{}{}
	for _, url := range peerURLs {
		if url == advertisedURL {
			continue
		}
		peerNodes[url] = struct{}{}
		unknown[url] = struct{}{}
	}

	return &Cluster{
		ThisNodeID:        thisID,
		ThisAdvertisedURL: advertisedURL,
		ClusterView:       NewClusterView(thisID, advertisedURL),
		PeerNodes:         peerNodes,
		UnknownPeerNodes:  unknown,
		FailureDetector:   NewFailureDetector(thisID, phiThreshold),
	}
}

// Clone returns a deep copy of the Cluster, used both for the
// GetCurrentClusterClone reply and as the payload of ClusterEvent
// broadcasts.
func (c *Cluster) Clone() Cluster {
	peerNodes := make(map[string]struct{}, len(c.PeerNodes))
	for k := range c.PeerNodes {
		peerNodes[k] = struct{}{}
	}
	unknown := make(map[string]struct{}, len(c.UnknownPeerNodes))
	for k := range c.UnknownPeerNodes {
		unknown[k] = struct{}{}
	}
	return Cluster{
		ThisNodeID:        c.ThisNodeID,
		ThisAdvertisedURL: c.ThisAdvertisedURL,
		ClusterView:       c.ClusterView.Clone(),
		PeerNodes:         peerNodes,
		UnknownPeerNodes:  unknown,
		FailureDetector:   c.FailureDetector.Clone(),
	}
}

// HasConverged implements the convergence predicate of §4.6: true iff
// UnknownPeerNodes is empty and for every known member, either it is this
// node or the failure detector considers it live right now, and its
// current state has been observed by every known member.
func (c *Cluster) HasConverged(now time.Time) bool {
	if len(c.UnknownPeerNodes) > 0 {
		return false
	}

	allMembers := c.ClusterView.MemberIDSet()
	for id, member := range c.ClusterView.KnownMembers {
		if id != c.ThisNodeID && !c.FailureDetector.IsLive(id, now) {
			return false
		}
		if member.State == nil || !member.State.ObservedBy.Equal(allMembers) {
			return false
		}
	}
	return true
}

// nowUnix returns the current time as seconds since the epoch, used to
// derive a node's Generation at startup.
func nowUnix() uint64 {
	return uint64(time.Now().Unix())
}
