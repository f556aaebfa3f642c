//go:build membership_debug

package membership

import "go.uber.org/zap"

// logUnrelatedMemberMerge panics under the membership_debug build tag so
// a merge invariant violation surfaces immediately in tests instead of
// being silently logged and skipped.
func logUnrelatedMemberMerge(logger *zap.Logger, err error) {
	logger.Error("unrelated member merge rejected", zap.Error(err))
	panic(err)
}
