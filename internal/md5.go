package internal

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// MD5Sum computes the MD5 digest of everything read from r and returns it
// hex encoded together with the number of bytes consumed.
func MD5Sum(r io.Reader) (string, int64, error) {
	h := md5.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// MD5SumFile computes the hex digest and size of a file.
func MD5SumFile(file string) (string, int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	return MD5Sum(f)
}

// MD5String returns the hex digest of s.
func MD5String(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
