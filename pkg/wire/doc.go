// Package wire recovers frames from the Petwant feeder serial stream.
package wire

// Every frame on the link has the layout
//
//	0xFF {0xFF|0xFC} TYPE LENGTH PAYLOAD[LENGTH]
//
// There is no checksum and no terminator, the declared length is the only
// thing delimiting a frame. The decoder therefore only guarantees structural
// completeness; semantic validation belongs to package msgs.
//
// Producer: feeder MCU
// Consumer: device session
