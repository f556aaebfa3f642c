// Package transport defines the collaborator contract the membership
// core uses to exchange cluster views with peers. The core treats the
// concrete wire transport as an external concern (binary framing, TLS,
// codegen); this package supplies that concern with a gRPC-backed
// default plus an in-memory implementation for tests and same-process
// demos.
package transport

import (
	"context"
	"errors"
)

// ErrUnreachable is returned by Channel.ExchangeClusterViews when the
// destination could not be reached. The core treats this as a
// TransportFailed event: it logs at debug and drops the destination for
// the current tick without retrying.
var ErrUnreachable = errors.New("transport: peer unreachable")

// NodeIDMsg is the wire form of a NodeID.
type NodeIDMsg struct {
	UniqueID   uint64 `json:"unique_id"`
	Generation uint64 `json:"generation"`
}

// MemberStateMsg is the wire form of a MemberViewState.
type MemberStateMsg struct {
	Status     uint8       `json:"status"`
	Version    uint16      `json:"version"`
	Heartbeat  uint64      `json:"heartbeat"`
	ObservedBy []NodeIDMsg `json:"observed_by"`
}

// MemberViewMsg is the wire form of a MemberView. State is nil for
// freshly-learned peers whose full record has not yet arrived.
type MemberViewMsg struct {
	ID             NodeIDMsg       `json:"id"`
	AdvertisedAddr string          `json:"advertised_addr"`
	State          *MemberStateMsg `json:"state,omitempty"`
}

// PartialClusterViewMsg is the gossip payload exchanged by
// ExchangeClusterViews: "here is what I know; tell me what you know."
type PartialClusterViewMsg struct {
	ThisNodeID NodeIDMsg       `json:"this_node_id"`
	Members    []MemberViewMsg `json:"members"`
}

// Channel is a single open line of communication to one peer.
type Channel interface {
	// ExchangeClusterViews sends req and returns the peer's reply. A
	// transport-level failure must return ErrUnreachable (wrapped or
	// bare) so the core can classify it as TransportFailed.
	ExchangeClusterViews(ctx context.Context, req PartialClusterViewMsg) (PartialClusterViewMsg, error)
}

// ChannelFactory resolves a peer URL to a reusable Channel. Implementers
// are expected to cache channels keyed by URL and serialize only cache
// inserts.
type ChannelFactory interface {
	Channel(ctx context.Context, url string) (Channel, error)
}
