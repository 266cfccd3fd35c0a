// Package peerhealth tracks the health of remote peers and gates outbound
// communication with a per-peer circuit breaker.
//
// Each peer gets an independent breaker with two states:
//
//   - CLOSED: peer is healthy, operations may be attempted
//   - OPEN: peer tripped after repeated failures, operations are skipped
//     until the cooldown elapses
//
// Usage:
//
//	tracker := peerhealth.New(3, 60*time.Second)
//	if tracker.IsHealthy(peerID) {
//	    // Attempt the operation...
//	    if err != nil {
//	        tracker.RecordFailure(peerID)
//	    } else {
//	        tracker.RecordSuccess(peerID)
//	    }
//	}
package peerhealth
