package upload

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/gostones/resumable/internal"
	"github.com/gostones/resumable/internal/types"
)

// Request describes one upload run.
type Request struct {
	// Credential is sent as the raw Authorization header value.
	Credential string
	// Endpoint is the base URL; it may already contain a query.
	Endpoint string
	// SourcePath is the local file to upload.
	SourcePath string
}

// Result summarizes a finished upload.
type Result struct {
	Identifier string
	Chunks     int
	Skipped    int
	Uploaded   int
	BytesSent  int64

	// Body is the server response to the last chunk. It is only set when
	// that chunk was uploaded in this run, which HasBody reports.
	Body    string
	HasBody bool
}

// Options configures a ResumableUploader. Zero values select defaults.
type Options struct {
	ChunkSize int64
	Client    *resty.Client
	Logger    logrus.FieldLogger
}

// chunkSource is the view of internal.FileChunk the upload loop reads from.
type chunkSource interface {
	Open() error
	Close() error
	Next() ([]byte, error)
	Filename() string
	Chunksize() int64
	Name() string
	Identifier() string
	Size() int64
	Count() int64
	Chunk() int
}

func newFileChunk(path string, chunksize int64) chunkSource {
	return internal.NewFileChunk(path, chunksize)
}

// ResumableUploader sends a file chunk by chunk, skipping the chunks the
// server already holds. Chunks are handled strictly one after another.
type ResumableUploader struct {
	c         *resty.Client
	chunksize int64
	reporter  Reporter
	log       logrus.FieldLogger

	source func(path string, chunksize int64) chunkSource
}

func NewResumableUploader(reporter Reporter, opts Options) *ResumableUploader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = types.ChunkSize
	}
	if opts.Client == nil {
		opts.Client = resty.New()
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = l
	}
	return &ResumableUploader{
		c:         opts.Client,
		chunksize: opts.ChunkSize,
		reporter:  reporter,
		log:       opts.Logger,
		source:    newFileChunk,
	}
}

// Upload runs the probe/upload loop over every chunk of req.SourcePath. The
// first error aborts the run; no partial result is returned with it.
func (r *ResumableUploader) Upload(ctx context.Context, req Request) (*Result, error) {
	fc := r.source(req.SourcePath, r.chunksize)
	if err := fc.Open(); err != nil {
		return nil, &NotFoundError{Path: req.SourcePath, Err: err}
	}
	defer fc.Close()

	filename := fc.Name()
	total := fc.Chunk()
	log := r.log.WithFields(logrus.Fields{
		"path":       fc.Filename(),
		"file":       filename,
		"chunksize":  fc.Chunksize(),
		"identifier": fc.Identifier(),
		"size":       fc.Size(),
		"chunks":     total,
	})
	log.Debug("upload started")

	res := &Result{
		Identifier: fc.Identifier(),
		Chunks:     total,
	}

	for i := 1; i <= total; i++ {
		chunkNo := strconv.Itoa(i)

		probeURL := internal.AddQuery(req.Endpoint, map[string]string{
			types.ParamChunkNumber: chunkNo,
			types.ParamFilename:    filename,
			types.ParamIdentifier:  fc.Identifier(),
		})
		outcome, err := Probe(ctx, r.c, probeURL, req.Credential)
		if err != nil {
			return nil, withChunk(err, i)
		}
		log.WithFields(logrus.Fields{"chunk": i, "outcome": outcome}).Debug("probed")

		if outcome == ChunkExists {
			r.reporter.Success(fmt.Sprintf("[%d/%d] Chunk exists!", i, total))
			res.Skipped++
			continue
		}

		uploadURL := internal.AddQuery(req.Endpoint, map[string]string{
			types.ParamChunkNumber: chunkNo,
			types.ParamFilename:    filename,
			types.ParamChunkSize:   strconv.FormatInt(r.chunksize, 10),
			types.ParamTotalSize:   strconv.FormatInt(fc.Size(), 10),
			types.ParamIdentifier:  fc.Identifier(),
		})

		// skipped chunks never advance the file, so this reads from
		// wherever the previous upload stopped
		data, err := fc.Next()
		if err != nil {
			return nil, &ReadError{Chunk: i, Err: err}
		}

		r.reporter.Success(fmt.Sprintf("[%d/%d] Uploading chunk of size %d bytes", i, total, len(data)))

		body, err := UploadChunk(ctx, r.c, uploadURL, filename, req.Credential, data)
		if err != nil {
			return nil, withChunk(err, i)
		}
		res.Uploaded++
		res.BytesSent = fc.Count()
		log.WithFields(logrus.Fields{"chunk": i, "bytes": len(data)}).Debug("uploaded")

		if i == total {
			res.Body = body
			res.HasBody = true
			r.reporter.Info("Result:")
			r.reporter.Success(body)
		}
	}

	log.WithFields(logrus.Fields{"skipped": res.Skipped, "uploaded": res.Uploaded}).Debug("upload finished")
	return res, nil
}

func withChunk(err error, chunk int) error {
	var ne *NetworkError
	if errors.As(err, &ne) {
		ne.Chunk = chunk
	}
	var pe *ProtocolError
	if errors.As(err, &pe) {
		pe.Chunk = chunk
	}
	return err
}
