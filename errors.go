package membership

import "errors"

// ErrUnrelatedMemberMerge is returned (and, under the membership_debug
// build tag, panicked with) when Merge is called on two member views
// whose NodeID.UniqueID differ. It signals an invariant violation in the
// caller, not a recoverable runtime condition.
var ErrUnrelatedMemberMerge = errors.New("membership: cannot merge unrelated member views")

// ErrInstanceClosed is returned by snapshot calls made after the Instance
// has been closed (the actor's event loop has stopped).
var ErrInstanceClosed = errors.New("membership: instance closed")

// errUnknownMember is returned by Instance.Promote when asked to
// transition a NodeID the cluster has no state for yet.
var errUnknownMember = errors.New("membership: unknown member")

// errInvalidPromotion is returned by Instance.Promote when asked to set a
// status that is only ever self-applied (Joining, Leaving).
var errInvalidPromotion = errors.New("membership: status is self-applied, not promotable")
