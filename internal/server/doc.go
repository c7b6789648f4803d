// Package server is a small in-process game host that phantom sessions
// connect to.
//
// It owns the player registry and the connection state machine:
// connecting -> logged_in -> spawned -> (respawning <-> spawned) -> closed.
// Packets it sends go out through a Transport; packets from sessions arrive
// through HandleInbound.
package server
