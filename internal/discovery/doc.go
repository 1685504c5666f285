// Package discovery locates infosvr devices with a broadcast get-info query.
//
// # Discovery Process
//
// One round works as follows:
//  1. Opens a UDP socket bound to 0.0.0.0:9999 with broadcast enabled
//  2. Resolves the broadcast destination (255.255.255.255:9999)
//  3. Builds a get-info query stamped with the next request id
//  4. Sends the full 512-byte query
//  5. Receives the expected number of complete 512-byte replies (two by
//     default), in arrival order
//
// The socket is closed when the round ends, successfully or not.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//
//	replies, err := scanner.Discover()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range replies {
//	    os.Stdout.Write(r.Bytes())
//	}
//
// # Errors
//
// Failures are returned as *Error, naming the stage (and reply number) that
// failed. The wrapped transport error can be matched with errors.Is against
// transport.ErrSocketCreate, transport.ErrBind, transport.ErrSocketOption,
// transport.ErrAddress, transport.ErrSend, transport.ErrRecv and
// transport.ErrCancelled.
//
// # Network Requirements
//
//   - UDP port 9999 must be free locally; the device replies to that port
//   - Devices must be on the same broadcast domain
//   - Without a Timeout a round waits forever when no device answers
//   - A socket bound to the wildcard address also receives its own
//     broadcast, so a reply may be the query itself (cmd_rsp 21); replies
//     are returned as received, without filtering
package discovery
