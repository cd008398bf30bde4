package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// FileChunk splits a file into fixed size chunks and reads them strictly in
// order. The file is never seeked: every call to Next continues where the
// previous one stopped.
type FileChunk struct {
	filename  string
	chunksize int64

	file       *os.File
	name       string
	identifier string
	chunk      int     // number of chunks
	size       int64   // file size
	count      Counter // bytes read
}

func NewFileChunk(filename string, chunksize int64) *FileChunk {
	return &FileChunk{
		filename:  filename,
		chunksize: chunksize,
	}
}

// ChunkCount returns the number of chunks announced for a file of the given
// size. It is always at least one, and a size that is an exact multiple of
// chunksize gets a trailing empty chunk.
func ChunkCount(size, chunksize int64) int {
	return int(size/chunksize) + 1
}

// Identifier groups the chunks of one logical upload on the server.
func Identifier(size int64, name string) string {
	return fmt.Sprintf("%d-%s", size, name)
}

func (r *FileChunk) Open() error {
	if r.chunksize <= 0 {
		return fmt.Errorf("invalid chunk size: %d", r.chunksize)
	}
	file, err := os.Open(r.filename)
	if err != nil {
		return err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}
	if fi.IsDir() {
		file.Close()
		return &os.PathError{Op: "open", Path: r.filename, Err: errors.New("is a directory")}
	}

	r.file = file
	r.name = fi.Name()
	r.size = fi.Size()
	r.chunk = ChunkCount(r.size, r.chunksize)
	r.identifier = Identifier(r.size, r.name)
	r.count.Reset()
	return nil
}

// Next reads the next chunk from the current position. The returned slice is
// shorter than the chunk size near the end of the file and empty once the
// file is exhausted; neither case is an error.
func (r *FileChunk) Next() ([]byte, error) {
	if r.file == nil {
		return nil, os.ErrInvalid
	}
	buf := make([]byte, r.chunksize)
	n, err := io.ReadFull(r.file, buf)
	r.count.Add(int64(n))
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	return buf[:n], err
}

func (r *FileChunk) Close() error {
	if r.file == nil {
		return os.ErrInvalid
	}
	return r.file.Close()
}

func (r *FileChunk) Filename() string {
	return r.filename
}

func (r *FileChunk) Chunksize() int64 {
	return r.chunksize
}

// Name is the base name of the file.
func (r *FileChunk) Name() string {
	return r.name
}

func (r *FileChunk) Identifier() string {
	return r.identifier
}

func (r *FileChunk) Size() int64 {
	return r.size
}

// Count returns the bytes consumed by Next so far.
func (r *FileChunk) Count() int64 {
	return r.count.Get()
}

func (r *FileChunk) Chunk() int {
	return r.chunk
}
