package internal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddQueryWithoutMark(t *testing.T) {
	got := AddQuery("http://localhost:8080", map[string]string{"a": "1"})
	assert.Equal(t, "http://localhost:8080?a=1", got)
}

func TestAddQueryWithMark(t *testing.T) {
	got := AddQuery("http://localhost:8080?", map[string]string{"a": "1"})
	assert.Equal(t, "http://localhost:8080?a=1", got)
}

func TestAddQueryExistingParams(t *testing.T) {
	got := AddQuery("http://localhost:8080/upload?token=x", map[string]string{"a": "1"})
	assert.Equal(t, "http://localhost:8080/upload?token=x&a=1", got)

	got = AddQuery("http://localhost:8080/upload?token=x&", map[string]string{"a": "1"})
	assert.Equal(t, "http://localhost:8080/upload?token=x&a=1", got)
}

func TestAddQueryEmpty(t *testing.T) {
	assert.Equal(t, "http://h?", AddQuery("http://h", nil))
	assert.Equal(t, "http://h?", AddQuery("http://h?", map[string]string{}))
}

func TestAddQueryNoEscaping(t *testing.T) {
	got := AddQuery("http://h", map[string]string{"resumableFilename": "my file.txt"})
	assert.Equal(t, "http://h?resumableFilename=my file.txt", got)
}

func TestAddQueryMultiParams(t *testing.T) {
	for n := 2; n <= 6; n++ {
		qs := map[string]string{}
		for i := 0; i < n; i++ {
			qs[fmt.Sprintf("k%d", i)] = fmt.Sprintf("v%d", i)
		}

		got := AddQuery("http://h:8080", qs)
		prefix := "http://h:8080?"
		if !assert.True(t, strings.HasPrefix(got, prefix)) {
			continue
		}

		rest := strings.TrimPrefix(got, prefix)
		assert.NotContains(t, rest, "&&")
		assert.False(t, strings.HasPrefix(rest, "&") || strings.HasSuffix(rest, "&"))

		pairs := strings.Split(rest, "&")
		assert.Len(t, pairs, n)
		seen := map[string]int{}
		for _, p := range pairs {
			seen[p]++
		}
		for k, v := range qs {
			assert.Equal(t, 1, seen[k+"="+v], "pair %s=%s", k, v)
		}
	}
}
