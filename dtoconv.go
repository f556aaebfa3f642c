package membership

import "github.com/mcastellin/membership/transport"

// toNodeIDMsg / fromNodeIDMsg, toMemberViewMsg / fromMemberViewMsg, and
// toPartialClusterViewMsg / fromPartialClusterViewMsg convert between the
// core's in-memory types and the transport package's wire DTOs, kept
// separate from the core merge logic so neither side depends on the
// other's representation.

func toNodeIDMsg(id NodeID) transport.NodeIDMsg {
	return transport.NodeIDMsg{UniqueID: id.UniqueID, Generation: id.Generation}
}

func fromNodeIDMsg(m transport.NodeIDMsg) NodeID {
	return NodeID{UniqueID: m.UniqueID, Generation: m.Generation}
}

func toMemberViewMsg(m MemberView) transport.MemberViewMsg {
	out := transport.MemberViewMsg{
		ID:             toNodeIDMsg(m.ID),
		AdvertisedAddr: m.AdvertisedAddr,
	}
	if m.State != nil {
		observedBy := make([]transport.NodeIDMsg, 0, len(m.State.ObservedBy))
		for id := range m.State.ObservedBy {
			observedBy = append(observedBy, toNodeIDMsg(id))
		}
		out.State = &transport.MemberStateMsg{
			Status:     uint8(m.State.Status),
			Version:    m.State.Version,
			Heartbeat:  m.State.Heartbeat,
			ObservedBy: observedBy,
		}
	}
	return out
}

func fromMemberViewMsg(m transport.MemberViewMsg) MemberView {
	out := MemberView{
		ID:             fromNodeIDMsg(m.ID),
		AdvertisedAddr: m.AdvertisedAddr,
	}
	if m.State != nil {
		observedBy := NodeIDSet{}
		for _, id := range m.State.ObservedBy {
			observedBy.Add(fromNodeIDMsg(id))
		}
		out.State = &MemberViewState{
			Status:     NodeStatus(m.State.Status),
			Version:    m.State.Version,
			Heartbeat:  m.State.Heartbeat,
			ObservedBy: observedBy,
		}
	}
	return out
}

func toPartialClusterViewMsg(v PartialClusterView) transport.PartialClusterViewMsg {
	members := make([]transport.MemberViewMsg, 0, len(v.Members))
	for _, m := range v.Members {
		members = append(members, toMemberViewMsg(m))
	}
	return transport.PartialClusterViewMsg{
		ThisNodeID: toNodeIDMsg(v.ThisNodeID),
		Members:    members,
	}
}

func fromPartialClusterViewMsg(m transport.PartialClusterViewMsg) PartialClusterView {
	members := make([]MemberView, 0, len(m.Members))
	for _, mv := range m.Members {
		members = append(members, fromMemberViewMsg(mv))
	}
	return PartialClusterView{
		ThisNodeID: fromNodeIDMsg(m.ThisNodeID),
		Members:    members,
	}
}
