package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/gostones/resumable/internal"
	"github.com/gostones/resumable/internal/types"
)

const (
	chunksDir    = "chunks"
	dataDir      = "data"
	completeFile = "complete.json"
)

// Store keeps received chunks on disk, one directory per upload identifier:
//
//	<dir>/<md5(identifier)>/chunks/<n>
//	<dir>/<md5(identifier)>/data/<filename>
//	<dir>/<md5(identifier)>/complete.json
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) uploadDir(identifier string) string {
	return filepath.Join(s.dir, internal.MD5String(identifier))
}

func (s *Store) chunkPath(identifier string, n int) string {
	return filepath.Join(s.uploadDir(identifier), chunksDir, strconv.Itoa(n))
}

// HasChunk reports whether chunk n is stored or the upload is already
// complete.
func (s *Store) HasChunk(identifier string, n int) bool {
	if _, err := os.Stat(s.chunkPath(identifier, n)); err == nil {
		return true
	}
	_, ok, _ := s.Complete(identifier)
	return ok
}

// PutChunk stores chunk n. The chunk becomes visible only once fully
// written.
func (s *Store) PutChunk(identifier string, n int, r io.Reader) (int64, error) {
	dir := filepath.Join(s.uploadDir(identifier), chunksDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmp := filepath.Join(dir, "."+uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write chunk %d: %w", n, err)
	}
	if err := os.Rename(tmp, s.chunkPath(identifier, n)); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return written, nil
}

// Received counts the chunks in [1, total] that are stored.
func (s *Store) Received(identifier string, total int) int {
	count := 0
	for i := 1; i <= total; i++ {
		if _, err := os.Stat(s.chunkPath(identifier, i)); err == nil {
			count++
		}
	}
	return count
}

// Assemble concatenates chunks 1..total into data/<filename> and returns the
// path of the assembled file.
func (s *Store) Assemble(identifier, filename string, total int) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.uploadDir(identifier), dataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	tmp := filepath.Join(dir, "."+uuid.NewString())
	out, err := os.Create(tmp)
	if err != nil {
		return "", err
	}
	for i := 1; i <= total; i++ {
		if err = appendFile(out, s.chunkPath(identifier, i)); err != nil {
			break
		}
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("assemble %s: %w", identifier, err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return dst, nil
}

// RemoveChunks drops the chunks of an upload.
func (s *Store) RemoveChunks(identifier string) error {
	return os.RemoveAll(filepath.Join(s.uploadDir(identifier), chunksDir))
}

// Complete returns the stored result of a finished upload.
func (s *Store) Complete(identifier string) (*types.CompleteUploadResponse, bool, error) {
	b, err := os.ReadFile(filepath.Join(s.uploadDir(identifier), completeFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res types.CompleteUploadResponse
	if err := json.Unmarshal(b, &res); err != nil {
		return nil, false, err
	}
	return &res, true, nil
}

// SetComplete records the result of a finished upload.
func (s *Store) SetComplete(res *types.CompleteUploadResponse) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.uploadDir(res.Identifier), completeFile), b, 0644)
}

func appendFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

func cleanFilename(filename string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return name, nil
}
