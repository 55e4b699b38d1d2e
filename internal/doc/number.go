package doc

import (
	"encoding/json"
	"math"
)

func toFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// toInt64 accepts integer kinds, integral json.Numbers and integral floats.
func toInt64(value any) (int64, bool) {
	switch current := value.(type) {
	case int:
		return int64(current), true
	case int8:
		return int64(current), true
	case int16:
		return int64(current), true
	case int32:
		return int64(current), true
	case int64:
		return current, true
	case uint:
		return int64(current), true
	case uint8:
		return int64(current), true
	case uint16:
		return int64(current), true
	case uint32:
		return int64(current), true
	case uint64:
		if current > math.MaxInt64 {
			return 0, false
		}
		return int64(current), true
	case json.Number:
		if parsed, err := current.Int64(); err == nil {
			return parsed, true
		}
		return 0, false
	case float32, float64:
		f, _ := toFloat64(current)
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}
