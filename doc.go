// Package membership is an embeddable cluster-membership library.
//
// Each participating process hosts one Instance. Instances discover each
// other through configured seed addresses, maintain a shared view of who
// is in the cluster and what their status is, detect failures with a
// phi-accrual detector, and expose a live stream of membership snapshots
// to the embedding application.
//
// The package does not implement a leader-election or downing policy: it
// surfaces suspicion through the FailureDetector but never demotes a
// member to Down by itself. It does not persist anything to disk; all
// state is rebuilt from the configured seeds on every restart.
package membership
