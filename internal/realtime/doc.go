// Package realtime implements the websocket synchronization subsystem: the
// connection registry, the ping/pong heartbeat, and the dispatcher that
// fans domain notifications out to every live connection of a user.
//
// Every frame leaving a connection goes through the handle's buffered send
// channel, drained by a single writer goroutine. The receive loop, the
// heartbeat monitor, and the dispatcher all enqueue; none of them touches
// the transport directly, so frames are never interleaved mid-write.
package realtime
