package normalize

import (
	"math"
	"regexp"
	"strconv"
)

var intShaped = regexp.MustCompile(`^-?[0-9]+$`)

// CoerceInt maps a decoded JSON value onto the coercion policy: integers and
// integer-shaped strings become int64, null and missing stay nil, anything
// else passes through unchanged for downstream rendering.
func CoerceInt(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return int64(x)
		}
		return x
	case string:
		if intShaped.MatchString(x) {
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n
			}
		}
		return x
	default:
		return v
	}
}

// AsInt reports a coerced value's integer form, false for anything that is
// not integer-typed after coercion.
func AsInt(v interface{}) (int64, bool) {
	n, ok := CoerceInt(v).(int64)
	return n, ok
}
