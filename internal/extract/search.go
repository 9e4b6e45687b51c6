package extract

import "errors"

// ErrTooDeep aborts a walk that exceeded the depth bound.
var ErrTooDeep = errors.New("extract: structure exceeds depth bound")

var errStop = errors.New("stop")

// Searcher walks parsed page data for record-shaped fragments.
type Searcher struct {
	// MaxDepth is the deepest container level visited; the root is level 0.
	MaxDepth int
}

func (s Searcher) maxDepth() int {
	if s.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}

// FindAll returns every matching fragment in walk order. Object members are
// visited in key order so identical input gives identical output. A walk
// that exceeds the depth bound yields nothing and ErrTooDeep.
func (s Searcher) FindAll(data any) ([]Shape, error) {
	var out []Shape
	err := s.walk(data, 0, func(sh Shape) error {
		out = append(out, sh)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindFirst returns the first fragment that refers to targetID.
func (s Searcher) FindFirst(data any, targetID string) (Shape, bool) {
	var found Shape
	err := s.walk(data, 0, func(sh Shape) error {
		if sh.ID() == targetID {
			found = sh
			return errStop
		}
		return nil
	})
	if errors.Is(err, errStop) {
		return found, true
	}
	return nil, false
}

func (s Searcher) walk(v any, depth int, yield func(Shape) error) error {
	switch t := v.(type) {
	case map[string]any:
		if depth > s.maxDepth() {
			return ErrTooDeep
		}
		for _, sh := range classify(t) {
			if err := yield(sh); err != nil {
				return err
			}
		}
		for _, k := range sortedKeys(t) {
			if err := s.walk(t[k], depth+1, yield); err != nil {
				return err
			}
		}
	case []any:
		if depth > s.maxDepth() {
			return ErrTooDeep
		}
		for _, item := range t {
			if err := s.walk(item, depth+1, yield); err != nil {
				return err
			}
		}
	}
	return nil
}
