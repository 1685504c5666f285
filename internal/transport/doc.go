// Package transport owns the UDP socket used for infosvr discovery and moves
// exact-size packets over it.
//
// # Socket Setup
//
// Open creates a UDP socket, binds it (0.0.0.0:9999 by default, so replies
// addressed to the infosvr port are delivered on any interface) and enables
// SO_BROADCAST. The steps run in that order and each has its own error kind.
//
// # Exact Transfers
//
// SendExact and RecvExact loop until the whole buffer has moved:
//   - A partial transfer advances the cursor by the bytes reported
//   - EINTR, zero-byte results and stray deadline expiries are retried
//   - Cancelling the context unblocks a pending call with ErrCancelled
//   - Anything else ends the transfer with ErrSend or ErrRecv
//
// There is no timeout of their own. A context deadline becomes the socket
// deadline for the duration of the call.
//
// # Errors
//
// All failures are *Error values. Match them by kind:
//
//	if errors.Is(err, transport.ErrBind) {
//	    // port 9999 already in use
//	}
package transport
