// Package server receives files sent with the resumable chunk protocol.
//
// A GET on the upload route answers whether a chunk is already stored (200)
// or still needed (400). A POST stores one chunk; the request that completes
// the file gets the assembled file's description as its response body.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/gostones/resumable/internal"
	"github.com/gostones/resumable/internal/types"
)

// maxMemory bounds the part of a multipart body held in memory; the rest
// spills to temporary files.
const maxMemory = 8 * types.MB

// multipartOverhead is allowed on top of the announced chunk size for part
// headers and boundaries.
const multipartOverhead = 64 << 10

type Server struct {
	store  *Store
	sink   Sink
	apiKey string
	log    logrus.FieldLogger

	mu sync.Mutex // serializes completion
}

// New returns a Server. sink may be nil; apiKey may be empty to accept any
// credential.
func New(store *Store, sink Sink, apiKey string, log logrus.FieldLogger) *Server {
	return &Server{
		store:  store,
		sink:   sink,
		apiKey: apiKey,
		log:    log,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Handle("/upload", s.authenticate(http.HandlerFunc(s.probe))).Methods(http.MethodGet)
	r.Handle("/upload", s.authenticate(http.HandlerFunc(s.upload))).Methods(http.MethodPost)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "ok")
	})
	return r
}

type chunkParams struct {
	Number     int
	Identifier string
	Filename   string
	ChunkSize  int64
	TotalSize  int64
}

// Total is the number of chunks the client announces for the file.
func (p chunkParams) Total() int {
	return internal.ChunkCount(p.TotalSize, p.ChunkSize)
}

func parseProbeParams(q url.Values) (chunkParams, error) {
	var p chunkParams
	n, err := strconv.Atoi(q.Get(types.ParamChunkNumber))
	if err != nil || n < 1 {
		return p, fmt.Errorf("invalid %s: %q", types.ParamChunkNumber, q.Get(types.ParamChunkNumber))
	}
	p.Number = n
	p.Identifier = q.Get(types.ParamIdentifier)
	if p.Identifier == "" {
		return p, fmt.Errorf("missing %s", types.ParamIdentifier)
	}
	p.Filename = q.Get(types.ParamFilename)
	return p, nil
}

func parseUploadParams(q url.Values) (chunkParams, error) {
	p, err := parseProbeParams(q)
	if err != nil {
		return p, err
	}
	if p.Filename == "" {
		return p, fmt.Errorf("missing %s", types.ParamFilename)
	}
	p.ChunkSize, err = strconv.ParseInt(q.Get(types.ParamChunkSize), 10, 64)
	if err != nil || p.ChunkSize <= 0 {
		return p, fmt.Errorf("invalid %s: %q", types.ParamChunkSize, q.Get(types.ParamChunkSize))
	}
	p.TotalSize, err = strconv.ParseInt(q.Get(types.ParamTotalSize), 10, 64)
	if err != nil || p.TotalSize < 0 {
		return p, fmt.Errorf("invalid %s: %q", types.ParamTotalSize, q.Get(types.ParamTotalSize))
	}
	if p.Number > p.Total() {
		return p, fmt.Errorf("chunk %d out of range [1, %d]", p.Number, p.Total())
	}
	return p, nil
}

func (s *Server) probe(w http.ResponseWriter, r *http.Request) {
	p, err := parseProbeParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if s.store.HasChunk(p.Identifier, p.Number) {
		w.WriteHeader(http.StatusOK)
		return
	}
	// 400 asks the client to send the chunk
	w.WriteHeader(http.StatusBadRequest)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	p, err := parseUploadParams(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	log := s.log.WithFields(logrus.Fields{
		"identifier": p.Identifier,
		"chunk":      p.Number,
	})

	if res, ok, err := s.store.Complete(p.Identifier); err != nil {
		log.WithError(err).Error("read upload state")
		http.Error(w, "can't read upload state", http.StatusInternalServerError)
		return
	} else if ok {
		writeJSON(w, res)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, p.ChunkSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("chunk larger than %d bytes", p.ChunkSize), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("invalid multipart body: %v", err), http.StatusUnprocessableEntity)
		return
	}
	defer r.MultipartForm.RemoveAll()

	f, _, err := r.FormFile(types.FilePart)
	if err != nil {
		http.Error(w, fmt.Sprintf("missing part %q", types.FilePart), http.StatusUnprocessableEntity)
		return
	}
	defer f.Close()

	n, err := s.store.PutChunk(p.Identifier, p.Number, f)
	if err != nil {
		log.WithError(err).Error("store chunk")
		http.Error(w, "can't store chunk", http.StatusInternalServerError)
		return
	}
	log.WithField("bytes", n).Debug("chunk stored")

	total := p.Total()
	received := s.store.Received(p.Identifier, total)
	if received < total {
		writeJSON(w, &types.ChunkResponse{
			Chunk:    p.Number,
			Received: received,
			Total:    total,
		})
		return
	}

	res, err := s.complete(r, p)
	if err != nil {
		log.WithError(err).Error("complete upload")
		http.Error(w, "can't complete upload", http.StatusInternalServerError)
		return
	}
	log.WithField("md5", res.MD5).Info("upload complete")
	writeJSON(w, res)
}

func (s *Server) complete(r *http.Request, p chunkParams) (*types.CompleteUploadResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a concurrent request may have completed it first
	if res, ok, err := s.store.Complete(p.Identifier); err != nil || ok {
		return res, err
	}

	fp, err := s.store.Assemble(p.Identifier, p.Filename, p.Total())
	if err != nil {
		return nil, err
	}
	sum, size, err := internal.MD5SumFile(fp)
	if err != nil {
		return nil, err
	}

	res := &types.CompleteUploadResponse{
		Identifier: p.Identifier,
		Filename:   filepath.Base(fp),
		Size:       size,
		MD5:        sum,
	}
	if s.sink != nil {
		key := internal.MD5String(p.Identifier) + "/" + res.Filename
		if res.Location, err = s.sink.Put(r.Context(), key, fp); err != nil {
			return nil, err
		}
	}
	if err := s.store.SetComplete(res); err != nil {
		return nil, err
	}
	if err := s.store.RemoveChunks(p.Identifier); err != nil {
		s.log.WithError(err).WithField("identifier", p.Identifier).Warn("remove chunks")
	}
	return res, nil
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("Authorization") != s.apiKey {
			http.Error(w, "invalid api key", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
