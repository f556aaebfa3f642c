package membership

import (
	"context"

	"github.com/mcastellin/membership/transport"
)

// Instance is the running handle an embedder holds for the lifetime of a
// node's membership in the cluster (§5, §6). All methods are safe for
// concurrent use.
type Instance struct {
	actor          *membershipActor
	cancel         context.CancelFunc
	channelFactory transport.ChannelFactory

	eventsCh    <-chan ClusterEvent
	unsubscribe func()
}

// NodeID returns this node's identity. It is fixed for the lifetime of
// the Instance, so no round-trip through the actor is needed.
func (i *Instance) NodeID() NodeID {
	return i.actor.cluster.ThisNodeID
}

// Cluster returns a point-in-time deep copy of the full membership state.
// It blocks until the actor services the request, ctx is cancelled, or
// the Instance has been closed.
func (i *Instance) Cluster(ctx context.Context) (Cluster, error) {
	reply := make(chan Cluster, 1)
	select {
	case i.actor.inbox <- getClusterCloneMsg{reply: reply}:
	case <-ctx.Done():
		return Cluster{}, ctx.Err()
	case <-i.actor.done:
		return Cluster{}, ErrInstanceClosed
	}

	select {
	case c := <-reply:
		return c, nil
	case <-ctx.Done():
		return Cluster{}, ctx.Err()
	case <-i.actor.done:
		return Cluster{}, ErrInstanceClosed
	}
}

// Events returns a stream of ClusterEvent snapshots, published after every
// reconciled gossip exchange, whether or not it changed local state
// (§4.6). The stream is lossy on
// overflow and is closed when the Instance is closed.
func (i *Instance) Events() <-chan ClusterEvent {
	return i.eventsCh
}

// Promote applies a status transition to target and folds it into this
// node's own view, so it propagates to the rest of the cluster on the
// next gossip tick (§9). It is the hook an embedder's own leader-election
// or downing policy drives Up, Exiting and Down through; Joining and
// Leaving remain self-applied and are not reachable through Promote.
func (i *Instance) Promote(target NodeID, status NodeStatus) error {
	if status == StatusJoining || status == StatusLeaving {
		return errInvalidPromotion
	}

	reply := make(chan error, 1)
	select {
	case i.actor.inbox <- promoteMsg{target: target, status: status, reply: reply}:
	case <-i.actor.done:
		return ErrInstanceClosed
	}

	select {
	case err := <-reply:
		return err
	case <-i.actor.done:
		return ErrInstanceClosed
	}
}

// TransportChannelFactory returns the ChannelFactory this Instance was
// built with, so an embedder that supplied its own (e.g. a
// transport.InMemoryNetwork-backed one in tests) can reuse it elsewhere.
func (i *Instance) TransportChannelFactory() transport.ChannelFactory {
	return i.channelFactory
}

// Close stops the actor's event loop and releases its event subscription.
// It is safe to call more than once.
func (i *Instance) Close() {
	i.cancel()
	<-i.actor.done
	if i.unsubscribe != nil {
		i.unsubscribe()
	}
}
