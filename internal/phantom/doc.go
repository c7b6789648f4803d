// Package phantom owns the simulated network interface for phantom players.
//
// Ownership boundary:
// - session registry (name -> session + reply/ack queues)
// - outbound packet interpretation and reply synthesis
// - batch container unwrapping
// - tick-driven reply delivery through the host inbound path
// - synthetic login handshake
//
// The host server is reached only through Facility. Replies produced while
// interpreting a packet are delivered on the next Process call; resource pack
// negotiation is the one synchronous exception.
package phantom
