package membership

import (
	"context"
	"math/rand"
	"time"

	"github.com/mcastellin/membership/transport"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// inboxCapacity bounds the actor's mailbox (§5: "bounded inbox
// (capacity 20)"). An overwhelmed actor causes sends on this channel to
// block, which the gRPC server surfaces as backpressure to RPC callers.
const inboxCapacity = 20

// actorMessage is the sum type of everything the MembershipActor reacts
// to (§4.6).
type actorMessage interface{ isActorMessage() }

type tickMsg struct{}

func (tickMsg) isActorMessage() {}

// reconcileMsg is ReconcileClusterView. reply is nil for the
// fire-and-forget case (an outgoing exchange feeding its response back
// in) and non-nil on the server side of an RPC.
type reconcileMsg struct {
	incoming PartialClusterView
	reply    chan PartialClusterView
}

func (reconcileMsg) isActorMessage() {}

type getClusterCloneMsg struct {
	reply chan Cluster
}

func (getClusterCloneMsg) isActorMessage() {}

type promoteMsg struct {
	target NodeID
	status NodeStatus
	reply  chan error
}

func (promoteMsg) isActorMessage() {}

// membershipActor is the single owner of Cluster (§4.6, §5). All
// mutation happens inside run, on a single goroutine.
type membershipActor struct {
	cluster        *Cluster
	inbox          chan actorMessage
	events         *eventBroadcaster
	channelFactory transport.ChannelFactory
	gossipInterval time.Duration
	logger         *zap.Logger
	rnd            *rand.Rand
	tracer         trace.Tracer
	done           chan struct{}
}

func newMembershipActor(cluster *Cluster, channelFactory transport.ChannelFactory, gossipInterval time.Duration, logger *zap.Logger) *membershipActor {
	return &membershipActor{
		cluster:        cluster,
		inbox:          make(chan actorMessage, inboxCapacity),
		events:         newEventBroadcaster(),
		channelFactory: channelFactory,
		gossipInterval: gossipInterval,
		logger:         logger,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		tracer:         otel.Tracer("github.com/mcastellin/membership"),
		done:           make(chan struct{}),
	}
}

// run is the actor's single-consumer event loop (§4.6). It returns when
// ctx is cancelled or the inbox is closed.
func (a *membershipActor) run(ctx context.Context) {
	defer close(a.done)

	ticker := time.NewTicker(a.gossipInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.handleTick(ctx)
		case msg, ok := <-a.inbox:
			if !ok {
				return
			}
			a.handle(ctx, msg)
		}
	}
}

func (a *membershipActor) handle(ctx context.Context, msg actorMessage) {
	switch m := msg.(type) {
	case reconcileMsg:
		a.handleReconcile(m)
	case getClusterCloneMsg:
		nonBlockingSendCluster(m.reply, a.cluster.Clone())
	case promoteMsg:
		nonBlockingSendErr(m.reply, a.handlePromote(m))
	case tickMsg:
		a.handleTick(ctx)
	}
}

// handleTick implements the Tick reaction of §4.6: bump our own
// heartbeat, pick destinations, and spawn one concurrent exchange per
// destination without awaiting a reply inline.
func (a *membershipActor) handleTick(ctx context.Context) {
	roundID := xid.New()

	self := a.cluster.ClusterView.KnownMembers[a.cluster.ThisNodeID]
	self.State.Heartbeat++
	a.cluster.ClusterView.KnownMembers[a.cluster.ThisNodeID] = self
	a.cluster.ClusterView.Heartbeats[a.cluster.ThisNodeID] = self.State.Heartbeat

	destinations := selectGossipDestinations(a.cluster, a.rnd)
	a.logger.Debug("gossip tick",
		zap.String("round", roundID.String()),
		zap.String("node", a.cluster.ThisNodeID.String()),
		zap.Int("destinations", len(destinations)))

	for _, dest := range destinations {
		go a.exchange(ctx, roundID, dest)
	}
}

// exchange is a per-destination exchange task (§5's "outside the actor"
// suspension points). A transport failure is TransportFailed: it is
// logged and the destination silently dropped for this tick.
func (a *membershipActor) exchange(ctx context.Context, roundID xid.ID, dest gossipDestination) {
	ctx, span := a.tracer.Start(ctx, "gossip.exchange", trace.WithAttributes(
		attribute.String("membership.round", roundID.String()),
		attribute.String("membership.destination", dest.url),
	))
	defer span.End()

	channel, err := a.channelFactory.Channel(ctx, dest.url)
	if err != nil {
		a.logger.Debug("transport failed: resolve channel",
			zap.String("round", roundID.String()), zap.String("url", dest.url), zap.Error(err))
		return
	}

	req := toPartialClusterViewMsg(dest.payload)
	replyMsg, err := channel.ExchangeClusterViews(ctx, req)
	if err != nil {
		a.logger.Debug("transport failed: exchange",
			zap.String("round", roundID.String()), zap.String("url", dest.url), zap.Error(err))
		return
	}

	incoming := fromPartialClusterViewMsg(replyMsg)
	select {
	case a.inbox <- reconcileMsg{incoming: incoming}:
	case <-ctx.Done():
	}
}

// handleReconcile implements ReconcileClusterView (§4.6).
func (a *membershipActor) handleReconcile(m reconcileMsg) {
	for _, member := range m.incoming.Members {
		if member.ID == m.incoming.ThisNodeID {
			delete(a.cluster.UnknownPeerNodes, member.AdvertisedAddr)
		}
		if member.ID != a.cluster.ThisNodeID && member.State != nil {
			a.cluster.FailureDetector.RecordHeartbeat(member.ID, member.State.Heartbeat)
		}
		if err := a.cluster.ClusterView.MergeMemberView(a.cluster.ThisNodeID, member); err != nil {
			logUnrelatedMemberMerge(a.logger, err)
		}
	}

	if a.events.HasSubscribers() {
		a.events.Publish(ClusterEvent{Cluster: a.cluster.Clone(), At: time.Now()})
	}

	if m.reply != nil {
		partial := PartialClusterView{
			ThisNodeID: a.cluster.ThisNodeID,
			Members:    snapshotMembers(a.cluster.ClusterView),
		}
		nonBlockingSendPartial(m.reply, partial)
	}
}

// handlePromote applies a local status transition to target and folds it
// into our own ClusterView exactly like any other merge, so it propagates
// on the next gossip tick. This is the hook an embedder-supplied
// leader/downing policy uses to drive Up/Exiting/Down (§9).
func (a *membershipActor) handlePromote(m promoteMsg) error {
	current, ok := a.cluster.ClusterView.KnownMembers[m.target]
	if !ok || current.State == nil {
		return errUnknownMember
	}

	updated := MemberView{
		ID:             m.target,
		AdvertisedAddr: current.AdvertisedAddr,
		State: &MemberViewState{
			Status:     m.status,
			Version:    current.State.Version + 1,
			Heartbeat:  current.State.Heartbeat,
			ObservedBy: NewNodeIDSet(m.target),
		},
	}
	return a.cluster.ClusterView.MergeMemberView(a.cluster.ThisNodeID, updated)
}

func nonBlockingSendCluster(ch chan Cluster, c Cluster) {
	select {
	case ch <- c:
	default:
	}
}

func nonBlockingSendPartial(ch chan PartialClusterView, v PartialClusterView) {
	select {
	case ch <- v:
	default:
	}
}

func nonBlockingSendErr(ch chan error, err error) {
	select {
	case ch <- err:
	default:
	}
}
