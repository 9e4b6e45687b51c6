package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

var entityReplacer = strings.NewReplacer(
	"&quot;", `"`,
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&#92;", `\`,
)

var errTrailingData = errors.New("trailing data after json value")

// Normalize decodes the fixed entity set in raw and parses it as JSON. When
// the whole text does not parse, the outermost {...} substring is tried.
func Normalize(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	s = entityReplacer.Replace(s)

	if v, err := decodeJSON(s); err == nil {
		return v, true
	}

	i := strings.IndexByte(s, '{')
	j := strings.LastIndexByte(s, '}')
	if i < 0 || j <= i {
		return nil, false
	}
	v, err := decodeJSON(s[i : j+1])
	if err != nil {
		return nil, false
	}
	return v, true
}

func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return v, nil
}
