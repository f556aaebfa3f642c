package membership

import (
	"context"

	"github.com/mcastellin/membership/transport"
)

// rpcHandler adapts the actor's inbox to transport.MembershipServer, so
// the same ReconcileClusterView path handles both self-initiated gossip
// exchanges and incoming RPCs (§4.6).
type rpcHandler struct {
	actor *membershipActor
}

// RPCHandler returns the transport.MembershipServer an embedder registers
// against its own gRPC server via transport.RegisterMembershipServer (or
// transport.InMemoryNetwork.Register in tests).
func (i *Instance) RPCHandler() transport.MembershipServer {
	return &rpcHandler{actor: i.actor}
}

func (h *rpcHandler) ExchangeClusterViews(ctx context.Context, req *transport.PartialClusterViewMsg) (*transport.PartialClusterViewMsg, error) {
	incoming := fromPartialClusterViewMsg(*req)
	reply := make(chan PartialClusterView, 1)

	select {
	case h.actor.inbox <- reconcileMsg{incoming: incoming, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case out := <-reply:
		wire := toPartialClusterViewMsg(out)
		return &wire, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
