package decoder

import (
	"fmt"

	"github.com/arloliu/dlf/errs"
	"github.com/arloliu/dlf/section"
)

// emitMask returns which streams produce samples: every non-opaque stream
// when ids is empty, otherwise only the named ones.
func emitMask(h *section.LogfileHeader, ids []string) ([]bool, error) {
	mask := make([]bool, len(h.Streams))
	if len(ids) == 0 {
		for i, s := range h.Streams {
			mask[i] = !s.IsOpaque()
		}

		return mask, nil
	}

	for _, id := range ids {
		idx, ok := h.StreamIndex(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownStreamID, id)
		}
		mask[idx] = !h.Streams[idx].IsOpaque()
	}

	return mask, nil
}
