package upload

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gostones/resumable/internal/types"
)

type call struct {
	Method      string
	Chunk       int
	Query       url.Values
	Auth        string
	Filename    string
	ContentType string
	Data        []byte
}

// fakeServer answers probes and uploads with the status and body chosen by
// the test and records every request.
type fakeServer struct {
	probe  func(chunk int) (int, string)
	upload func(chunk int) (int, string)

	mu    sync.Mutex
	calls []call
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := call{
		Method: r.Method,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
	}
	c.Chunk, _ = strconv.Atoi(c.Query.Get(types.ParamChunkNumber))

	status, body := http.StatusMethodNotAllowed, "unexpected method"
	switch r.Method {
	case http.MethodGet:
		status, body = s.probe(c.Chunk)
	case http.MethodPost:
		f, hdr, err := r.FormFile(types.FilePart)
		if err != nil {
			status, body = http.StatusInternalServerError, err.Error()
			break
		}
		c.Data, _ = io.ReadAll(f)
		f.Close()
		c.Filename = hdr.Filename
		c.ContentType = hdr.Header.Get("Content-Type")
		status, body = s.upload(c.Chunk)
	}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (s *fakeServer) Calls() []call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]call(nil), s.calls...)
}

func always(status int, body string) func(int) (int, string) {
	return func(int) (int, string) { return status, body }
}

func newFakeServer(t *testing.T, fs *fakeServer) string {
	t.Helper()
	srv := httptest.NewServer(fs)
	t.Cleanup(srv.Close)
	return srv.URL
}

type recordingReporter struct {
	lines []string
}

func (r *recordingReporter) Info(text string)    { r.lines = append(r.lines, "info: "+text) }
func (r *recordingReporter) Success(text string) { r.lines = append(r.lines, "ok: "+text) }
func (r *recordingReporter) Error(text string)   { r.lines = append(r.lines, "error: "+text) }

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fp, data, 0644))
	return fp
}
