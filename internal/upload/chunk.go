package upload

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/gostones/resumable/internal/types"
)

// ProbeOutcome is the server's answer to a chunk probe.
type ProbeOutcome int

const (
	// ChunkExists means the server already holds the chunk.
	ChunkExists ProbeOutcome = iota + 1
	// ChunkMissing means the chunk has to be uploaded.
	ChunkMissing
)

func (o ProbeOutcome) String() string {
	switch o {
	case ChunkExists:
		return "exists"
	case ChunkMissing:
		return "missing"
	}
	return "unknown"
}

// Probe asks the server whether it holds a chunk. url must already carry the
// chunk number, filename and identifier. 200 maps to ChunkExists, 400 to
// ChunkMissing; any other status is a *ProtocolError.
func Probe(ctx context.Context, c *resty.Client, url, credential string) (ProbeOutcome, error) {
	resp, err := c.R().
		SetContext(ctx).
		SetHeader("Authorization", credential).
		Get(url)
	if err != nil {
		return 0, &NetworkError{Op: OpProbe, URL: url, Err: err}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return ChunkExists, nil
	case http.StatusBadRequest:
		return ChunkMissing, nil
	}
	return 0, &ProtocolError{
		Op:         OpProbe,
		StatusCode: resp.StatusCode(),
		Body:       string(resp.Body()),
	}
}

// UploadChunk posts data as the single multipart part "file" and returns the
// response body. Any status other than 200 is a *ProtocolError.
func UploadChunk(ctx context.Context, c *resty.Client, url, filename, credential string, data []byte) (string, error) {
	resp, err := c.R().
		SetContext(ctx).
		SetHeader("Authorization", credential).
		SetMultipartField(types.FilePart, filename, types.ChunkContentType, bytes.NewReader(data)).
		Post(url)
	if err != nil {
		return "", &NetworkError{Op: OpUpload, URL: url, Err: err}
	}

	body := string(resp.Body())
	if resp.StatusCode() != http.StatusOK {
		return "", &ProtocolError{
			Op:         OpUpload,
			StatusCode: resp.StatusCode(),
			Body:       body,
		}
	}
	return body, nil
}
