package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMD5Sum(t *testing.T) {
	hex, n, err := MD5Sum(strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", hex)
	assert.Equal(t, int64(11), n)

	hex, n, err = MD5Sum(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", hex)
	assert.Equal(t, int64(0), n)
}

func TestMD5SumFile(t *testing.T) {
	fp := writeFile(t, "file.txt", []byte("hello world"))

	hex, n, err := MD5SumFile(fp)
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", hex)
	assert.Equal(t, int64(11), n)

	_, _, err = MD5SumFile(fp + ".missing")
	assert.Error(t, err)
}

func TestMD5String(t *testing.T) {
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", MD5String("hello world"))
}
