package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// LineTerminator ends every request and response on the wire.
const LineTerminator = "\r\n"

// Arg is a single call parameter. The protocol only carries quoted
// strings and bare integers.
type Arg struct {
	str      string
	num      int64
	isString bool
}

// StringArg creates a quoted string parameter
func StringArg(s string) Arg {
	return Arg{str: s, isString: true}
}

// IntArg creates a bare integer parameter
func IntArg(n int) Arg {
	return Arg{num: int64(n)}
}

// IsString reports whether the argument is encoded as a quoted string
func (a Arg) IsString() bool {
	return a.isString
}

// Str returns the string value (empty for integer arguments)
func (a Arg) Str() string {
	return a.str
}

// Int returns the integer value (zero for string arguments)
func (a Arg) Int() int64 {
	return a.num
}

func (a Arg) wire() string {
	if a.isString {
		return quote(a.str)
	}
	return strconv.FormatInt(a.num, 10)
}

// GoString renders the argument the way it appears in a request line
func (a Arg) GoString() string {
	return a.wire()
}

func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return string(bytes.TrimRight(b.Bytes(), "\n"))
}

// Encode builds one CRLF-terminated request line:
//
//	{"id":<id>,"method":"<name>","params":[<arg>, ...]}\r\n
func Encode(id int16, method Method, args []Arg) []byte {
	var b bytes.Buffer
	b.WriteString(`{"id":`)
	b.WriteString(strconv.Itoa(int(id)))
	b.WriteString(`,"method":"`)
	b.WriteString(method.String())
	b.WriteString(`","params":[`)
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.wire())
	}
	b.WriteString("]}")
	b.WriteString(LineTerminator)
	return b.Bytes()
}

// Request is a decoded request line
type Request struct {
	ID     int16
	Method Method
	Args   []Arg
}

type requestShape struct {
	ID     *int16            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// DecodeRequest parses a request line produced by Encode
func DecodeRequest(line []byte) (*Request, error) {
	var shape requestShape
	if err := json.Unmarshal(TrimPadding(line), &shape); err != nil {
		return nil, &DecodeError{Raw: string(line), Err: err}
	}
	if shape.ID == nil {
		return nil, &DecodeError{Raw: string(line), Err: errors.New("missing id")}
	}

	method, ok := ParseMethod(shape.Method)
	if !ok {
		return nil, &DecodeError{Raw: string(line), Err: fmt.Errorf("unknown method %q", shape.Method)}
	}

	args := make([]Arg, 0, len(shape.Params))
	for _, raw := range shape.Params {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, &DecodeError{Raw: string(line), Err: err}
			}
			args = append(args, StringArg(s))
			continue
		}
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, &DecodeError{Raw: string(line), Err: fmt.Errorf("param %s is neither string nor integer", raw)}
		}
		args = append(args, Arg{num: n})
	}

	return &Request{ID: *shape.ID, Method: method, Args: args}, nil
}

// Response is a successful reply. Result holds the raw JSON array; its
// element type depends on the method that was called.
type Response struct {
	ID     int16
	Result json.RawMessage
}

// Strings decodes the result as a string array (acknowledgements and
// property queries)
func (r *Response) Strings() ([]string, error) {
	var out []string
	if err := json.Unmarshal(r.Result, &out); err != nil {
		return nil, &DecodeError{Raw: string(r.Result), Err: err}
	}
	return out, nil
}

// CronEntry is one record of a timer query result
type CronEntry struct {
	Type  int    `json:"type"`
	Delay uint16 `json:"delay"`
	Mix   int    `json:"mix"`
}

// CronEntries decodes the result as an array of timer records
func (r *Response) CronEntries() ([]CronEntry, error) {
	var out []CronEntry
	if err := json.Unmarshal(r.Result, &out); err != nil {
		return nil, &DecodeError{Raw: string(r.Result), Err: err}
	}
	return out, nil
}

// ErrorReply is a protocol-level error returned by the device
type ErrorReply struct {
	ID      int16
	Code    int
	Message string
}

func (e *ErrorReply) Error() string {
	return fmt.Sprintf("device error %d: %s", e.Code, e.Message)
}

// DecodeError means the bytes matched neither the success nor the error shape
type DecodeError struct {
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed response %q: %v", e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type successShape struct {
	ID     *int16          `json:"id"`
	Result json.RawMessage `json:"result"`
}

type errorShape struct {
	ID    *int16 `json:"id"`
	Error *struct {
		Code    *int    `json:"code"`
		Message *string `json:"message"`
	} `json:"error"`
}

// TrimPadding strips the NUL tail of a fixed-size read buffer and any
// trailing whitespace
func TrimPadding(buf []byte) []byte {
	buf = bytes.TrimRight(buf, "\x00")
	return bytes.TrimRightFunc(buf, unicode.IsSpace)
}

// Decode parses one response. The strict success shape is tried first,
// then the error shape.
//
// Returns a *Response on success, an *ErrorReply when the device rejected
// the call, or a *DecodeError when neither shape matched.
func Decode(buf []byte) (*Response, error) {
	data := TrimPadding(buf)

	var ok successShape
	if err := json.Unmarshal(data, &ok); err == nil && ok.ID != nil && isArray(ok.Result) {
		return &Response{ID: *ok.ID, Result: ok.Result}, nil
	}

	if reply, err := DecodeErrorReply(data); err == nil {
		return nil, reply
	}

	var syntaxCheck json.RawMessage
	err := json.Unmarshal(data, &syntaxCheck)
	if err == nil {
		err = errors.New("neither result nor error shape")
	}
	return nil, &DecodeError{Raw: string(data), Err: err}
}

// DecodeErrorReply parses only the error shape
func DecodeErrorReply(buf []byte) (*ErrorReply, error) {
	data := TrimPadding(buf)

	var shape errorShape
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, &DecodeError{Raw: string(data), Err: err}
	}
	if shape.ID == nil || shape.Error == nil || shape.Error.Code == nil || shape.Error.Message == nil {
		return nil, &DecodeError{Raw: string(data), Err: errors.New("not an error reply")}
	}

	return &ErrorReply{
		ID:      *shape.ID,
		Code:    *shape.Error.Code,
		Message: *shape.Error.Message,
	}, nil
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
