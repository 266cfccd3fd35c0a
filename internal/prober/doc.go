// Package prober actively probes remote peers over HTTP and feeds the
// outcomes into the peer health tracker. It consults the tracker before
// each attempt, so a tripped peer is left alone until its cooldown
// elapses, then picked up again automatically.
package prober
