package internal

import (
	"sort"
	"strings"
)

// AddQuery appends qs to url as key=value pairs. A '?' is added when url has
// none. Keys and values are written as given, without escaping.
func AddQuery(url string, qs map[string]string) string {
	i := strings.LastIndex(url, "?")
	if i == -1 {
		url += "?"
	}
	if len(qs) == 0 {
		return url
	}
	if i != -1 && i < len(url)-1 && !strings.HasSuffix(url, "&") {
		// url already carries parameters
		url += "&"
	}

	keys := make([]string, 0, len(qs))
	for k := range qs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(qs))
	for _, k := range keys {
		pairs = append(pairs, k+"="+qs[k])
	}
	return url + strings.Join(pairs, "&")
}
