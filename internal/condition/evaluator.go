// Package condition evaluates branch conditions against execution data.
//
// Evaluation is pure and total: missing keys compare as empty strings,
// non-numeric durations evaluate false, and a failing custom predicate is
// logged and treated as false. A conditional node can therefore never fail
// an execution.
package condition

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/pkg/domain"
)

// CustomFunc resolves "custom" conditions. It is supplied by the host;
// an error or a missing func evaluates false.
type CustomFunc func(ctx context.Context, spec domain.ConditionSpec, data map[string]string) (bool, error)

// Evaluator maps (condition spec, execution data) to a boolean.
type Evaluator struct {
	logger *slog.Logger
	custom CustomFunc
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger used for custom-condition warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithCustomFunc plugs in the resolver for "custom" conditions.
func WithCustomFunc(fn CustomFunc) Option {
	return func(e *Evaluator) {
		e.custom = fn
	}
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate returns the boolean outcome of spec against data.
func (e *Evaluator) Evaluate(ctx context.Context, spec domain.ConditionSpec, data map[string]string) bool {
	source := strings.TrimSpace(data[spec.Source])
	value := strings.TrimSpace(spec.Value)

	switch spec.Kind {
	case domain.CondContains:
		return strings.Contains(strings.ToLower(source), strings.ToLower(value))

	case domain.CondEquals:
		return strings.EqualFold(source, value)

	case domain.CondDurationGreater:
		src, val, ok := parseSeconds(source, value)
		return ok && src > val

	case domain.CondDurationLess:
		src, val, ok := parseSeconds(source, value)
		return ok && src < val

	case domain.CondCustom:
		if e.custom == nil {
			e.logger.Warn("custom condition has no resolver, evaluating false", "source", spec.Source)
			return false
		}
		result, err := e.custom(ctx, spec, data)
		if err != nil {
			e.logger.Warn("custom condition failed, evaluating false", "source", spec.Source, "err", err)
			return false
		}
		return result

	default:
		e.logger.Warn("unknown condition kind, evaluating false", "kind", string(spec.Kind))
		return false
	}
}

// parseSeconds parses both operands as numeric seconds. A missing or
// non-numeric source yields ok=false, which evaluates false upstream.
func parseSeconds(source, value string) (src, val float64, ok bool) {
	src, errSrc := strconv.ParseFloat(source, 64)
	val, errVal := strconv.ParseFloat(value, 64)
	if errSrc != nil || errVal != nil {
		return 0, 0, false
	}
	return src, val, true
}
