// Package protocol implements the binary wire protocol of the Tokyo Tyrant
// database server: the request encoders, the response decoder and the command
// descriptors that tie them together.
//
// Wire format:
//
//   - Every request starts with the magic byte 0xC8 followed by a one byte opcode.
//   - All integers are big endian, 32-bit unless noted; 64-bit values travel as
//     two 32-bit words, high word first.
//   - Variable length data is preceded by its 32-bit size and follows all fixed
//     width fields.
//   - Every response starts with a one byte status, zero on success.
//
// Key Components:
//
//   - Writer / Reader: big endian buffer primitives. The Reader consumes exactly
//     the bytes a field declares from any io.Reader and reports ErrShortResponse
//     when the stream ends early, so it works on fragmented streams as well as
//     on complete in-memory frames.
//
//   - Command: the descriptor of one request/response shape (opcode, response
//     Shape, whether a response is expected at all). Decoding is always driven
//     by the descriptor recorded at send time, never by the response bytes.
//
//   - Encode*: one pure function per command. All arguments are validated before
//     the first byte is written; errors carry common.CodeInvalidOperation.
//
//   - ReadResponse / Decode: parse a response into a Response whose used fields
//     depend on the shape. Misc responses have a trailing hint element removed
//     and exposed as Response.Hint.
//
//   - FixedPoint: the integral/fractional representation of real numbers used
//     by adddouble, with the fraction scaled by 10^10 and truncated.
package protocol
