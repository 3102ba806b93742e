package usage

import (
	"fmt"

	"resume-builder/internal/llm"
)

// ErrLimitReached indicates the user spent every AI credit in the window.
// It wraps llm.ErrCreditsExhausted so callers map it to the same response.
var ErrLimitReached = fmt.Errorf("usage limit reached: %w", llm.ErrCreditsExhausted)
