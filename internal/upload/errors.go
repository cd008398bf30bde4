package upload

import "fmt"

// Operations that talk to the server.
const (
	OpProbe  = "probe"
	OpUpload = "upload"
)

// UsageError reports malformed command line arguments. An empty Msg means
// the caller only asked for the usage text.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// Help reports whether the error is a plain request for usage.
func (e *UsageError) Help() bool {
	return e.Msg == ""
}

// NotFoundError is returned when the source file cannot be opened.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("File doesn't exist: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// NetworkError wraps transport failures: DNS, connect, malformed URL.
type NetworkError struct {
	Op    string
	Chunk int
	URL   string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s chunk %d: %v", e.Op, e.Chunk, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ProtocolError is a status the protocol does not accept. The message is the
// response body, verbatim.
type ProtocolError struct {
	Op         string
	Chunk      int
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	return e.Body
}

// ReadError is a local I/O failure while reading a chunk.
type ReadError struct {
	Chunk int
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read chunk %d: %v", e.Chunk, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
