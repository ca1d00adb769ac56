package walker

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

// KeyResolver derives a meter key from a directory's position in the
// dataset tree.
type KeyResolver struct {
	pattern *regexp.Regexp
	meter   int
}

// The pattern's first capture group must hold the building number.
func NewKeyResolver(pattern *regexp.Regexp, meter int) *KeyResolver {
	return &KeyResolver{pattern: pattern, meter: meter}
}

// Resolve looks at the segments of rel, a path relative to the dataset
// root, deepest first. ErrKeyNotFound when no segment names a building.
func (r *KeyResolver) Resolve(rel string) (types.MeterKey, error) {
	segments := strings.Split(filepath.ToSlash(filepath.Clean(rel)), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		m := r.pattern.FindStringSubmatch(segments[i])
		if m == nil || len(m) < 2 {
			continue
		}
		building, err := strconv.Atoi(m[1])
		if err != nil {
			return types.MeterKey{}, fmt.Errorf("%w: building number %q in %s", types.ErrParse, m[1], rel)
		}
		return types.NewMeterKey(building, r.meter)
	}
	return types.MeterKey{}, fmt.Errorf("%w: %s", types.ErrKeyNotFound, rel)
}
