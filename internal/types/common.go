package types

// MB is one mebibyte.
const MB = 1024 * 1024

// ChunkSize is the size of every chunk but the last.
const ChunkSize int64 = 5 * MB

// Query parameters of the resumable chunk protocol.
const (
	ParamChunkNumber = "resumableChunkNumber"
	ParamFilename    = "resumableFilename"
	ParamChunkSize   = "resumableChunkSize"
	ParamTotalSize   = "resumableTotalSize"
	ParamIdentifier  = "resumableIdentifier"
)

// FilePart is the multipart field carrying the chunk bytes.
const FilePart = "file"

// ChunkContentType is the content type of the chunk part.
const ChunkContentType = "application/octet-stream"

// ChunkResponse is returned by the server for a stored chunk that does not
// complete the file.
type ChunkResponse struct {
	Chunk    int `json:"chunk"`
	Received int `json:"received"`
	Total    int `json:"total"`
}

// CompleteUploadResponse is returned by the server once the last missing
// chunk arrived and the file was assembled.
type CompleteUploadResponse struct {
	Identifier string `json:"identifier"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	MD5        string `json:"md5"`
	Location   string `json:"location,omitempty"`
}
