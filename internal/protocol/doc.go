// Package protocol implements the infosvr packet format.
//
// infosvr is the discovery daemon found on ASUS WL-500g class routers. It
// listens on UDP port 9999 and answers broadcast queries with fixed-size
// packets describing the device.
//
// # Packet Format
//
// Every packet, query or reply, is exactly 512 bytes:
//   - Byte 0: service (12 = IBox device class)
//   - Byte 1: cmd_rsp (21 = command, 22 = response)
//   - Bytes 2-3: operation (31 = get-info, 51 = system command)
//   - Bytes 4-7: id (request correlation counter)
//   - Bytes 8-511: payload (zero in a query)
//
// The operation and id fields are written in host byte order, matching the
// reference client and the firmware it talks to.
//
// # Usage Example
//
//	codec := protocol.NewCodec()
//	query := codec.BuildQuery()
//	conn.WriteTo(query.Bytes(), broadcastAddr)
//
// # Request IDs
//
// Each Codec owns its own counter starting at 0. The counter is advanced with
// atomic operations, so a Codec may be shared between goroutines.
//
// Reply payloads are not interpreted by this package. ParseHeader exposes the
// 8 header bytes of a reply for logging and display only.
package protocol
