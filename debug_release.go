//go:build !membership_debug

package membership

import "go.uber.org/zap"

// logUnrelatedMemberMerge handles ErrUnrelatedMemberMerge in production
// builds: log it and keep the actor running. The membership_debug build
// tag (debug_panic.go) swaps this for a panic, for use in tests and
// local debugging where a merge invariant violation should fail loudly.
func logUnrelatedMemberMerge(logger *zap.Logger, err error) {
	logger.Error("unrelated member merge rejected", zap.Error(err))
}
