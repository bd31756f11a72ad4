package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/imageforge/gateway/model"
)

// Limits parameterizes the field rules. Bounds live in config, not in code,
// because the allowed model set and dimensions grow over time.
type Limits struct {
	MaxDimension    int
	MaxSteps        int
	MaxCFG          float64
	MaxPromptLength int
	Models          []string
}

func DefaultLimits() Limits {
	return Limits{
		MaxDimension:    1024,
		MaxSteps:        100,
		MaxCFG:          10,
		MaxPromptLength: 10000,
		Models:          []string{"flux", "hidream", "omnigen", "sd3.5"},
	}
}

// Validate checks an untyped payload against the limits. Every field is
// checked independently and all violations are returned together, so a
// client can fix everything in one round trip. A request is produced only
// when the violation list is empty.
func Validate(payload map[string]any, lim Limits) (model.JobRequest, []string) {
	var violations []string
	var req model.JobRequest

	if h, ok := wholeNumber(payload, "height"); !ok || h < 1 || h > int64(lim.MaxDimension) {
		violations = append(violations, fmt.Sprintf("height must be a whole number between 1 and %d", lim.MaxDimension))
	} else {
		req.Height = int(h)
	}

	if w, ok := wholeNumber(payload, "width"); !ok || w < 1 || w > int64(lim.MaxDimension) {
		violations = append(violations, fmt.Sprintf("width must be a whole number between 1 and %d", lim.MaxDimension))
	} else {
		req.Width = int(w)
	}

	if s, ok := wholeNumber(payload, "steps"); !ok || s < 1 || s > int64(lim.MaxSteps) {
		violations = append(violations, fmt.Sprintf("steps must be a whole number between 1 and %d", lim.MaxSteps))
	} else {
		req.Steps = int(s)
	}

	// seed 0 is a sentinel meaning "assign one server-side", resolved later
	// by the descriptor builder.
	if s, ok := wholeNumber(payload, "seed"); !ok || s < 0 {
		violations = append(violations, "seed must be a whole number >= 0")
	} else {
		req.Seed = s
	}

	if c, ok := number(payload, "cfg"); !ok || c < 0 || c > lim.MaxCFG {
		violations = append(violations, fmt.Sprintf("cfg must be a number between 0 and %g", lim.MaxCFG))
	} else {
		req.CFG = c
	}

	if p, ok := payload["prompt"].(string); !ok || strings.TrimSpace(p) == "" || len(p) > lim.MaxPromptLength {
		violations = append(violations, fmt.Sprintf("prompt must be a non-empty string of at most %d characters", lim.MaxPromptLength))
	} else {
		req.Prompt = p
	}

	switch np := payload["negativePrompt"].(type) {
	case nil:
		req.NegativePrompt = ""
	case string:
		if len(np) > lim.MaxPromptLength {
			violations = append(violations, fmt.Sprintf("negativePrompt must be at most %d characters", lim.MaxPromptLength))
		} else {
			req.NegativePrompt = np
		}
	default:
		violations = append(violations, "negativePrompt must be a string")
	}

	if m, ok := payload["model"].(string); !ok || !contains(lim.Models, m) {
		violations = append(violations, fmt.Sprintf("model must be one of: %s", strings.Join(lim.Models, ", ")))
	} else {
		req.Model = m
	}

	if len(violations) > 0 {
		return model.JobRequest{}, violations
	}
	return req, nil
}

func number(payload map[string]any, key string) (float64, bool) {
	f, ok := payload[key].(float64)
	return f, ok
}

func wholeNumber(payload map[string]any, key string) (int64, bool) {
	f, ok := number(payload, key)
	if !ok || f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
