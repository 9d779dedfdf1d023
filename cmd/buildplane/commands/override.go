package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/tracefront/build-plane/internal/jsonpatch"
)

// applyOverrides rewrites the merged configuration with one JSON patch add
// operation per --set pair. Paths use dots; missing intermediate objects are
// created.
func applyOverrides(bs []byte, sets []string) ([]byte, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	ops := make([]map[string]any, 0, len(sets))
	for _, s := range sets {
		path, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid override %q, expected path=value", s)
		}
		ops = append(ops, map[string]any{
			"op":    "add",
			"path":  "/" + strings.ReplaceAll(path, ".", "/"),
			"value": parseScalar(value),
		})
	}

	pbs, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}

	patch, err := jsonpatch.Decode(pbs)
	if err != nil {
		return nil, err
	}

	return jsonpatch.Apply(patch, raw)
}

func parseScalar(s string) any {
	if v, err := strconv.ParseBool(s); err == nil {
		return v
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return s
}
