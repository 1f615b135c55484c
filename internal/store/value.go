package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// encodeValue renders a decoded value as the text stored in run_data.data.
// Numbers use their shortest round-trip form, including NaN and infinities.
// Records become JSON objects whose non-finite members are stored as strings.
func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return fmt.Sprint(x), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}

	return string(b), nil
}

func sqlTick(tick uint64) (int64, error) {
	if tick > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrTickRange, tick)
	}

	return int64(tick), nil
}
