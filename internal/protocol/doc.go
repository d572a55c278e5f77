// Package protocol implements the line-delimited JSON control protocol
// spoken by the lights over TCP.
//
// # Wire Format
//
// Every request is a single JSON object terminated by CRLF:
//
//	{"id":1,"method":"set_bright","params":[50, "smooth", 500]}\r\n
//
// Parameters are either quoted strings or bare integers. The device answers
// with one object carrying the same id and either a result array or an error
// object:
//
//	{"id":1,"result":["ok"]}
//	{"id":1,"error":{"code":-1,"message":"unsupported method"}}
//
// # Decoding
//
// Decode strips NUL padding and trailing whitespace left over from fixed-size
// socket reads, then tries the success shape before the error shape. Bytes
// matching neither produce a *DecodeError.
//
// # Methods
//
// Method values map to wire names through a single table, shared by Encode
// and by ParseMethod (used when reading a device's capability list).
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package protocol
