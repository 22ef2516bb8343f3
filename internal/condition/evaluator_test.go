package condition_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/callweave/callweave/internal/condition"
	"github.com/callweave/callweave/pkg/domain"
)

func TestEvaluate(t *testing.T) {
	data := map[string]string{
		"last_response": "Yes, please",
		"call-1":        "45",
		"blank":         "   ",
	}

	tests := []struct {
		name string
		spec domain.ConditionSpec
		want bool
	}{
		{
			"contains case-insensitive",
			domain.ConditionSpec{Kind: domain.CondContains, Source: "last_response", Value: "yes"},
			true,
		},
		{
			"contains miss",
			domain.ConditionSpec{Kind: domain.CondContains, Source: "last_response", Value: "no thanks"},
			false,
		},
		{
			"contains missing source key",
			domain.ConditionSpec{Kind: domain.CondContains, Source: "absent", Value: "yes"},
			false,
		},
		{
			"equals case-insensitive trimmed",
			domain.ConditionSpec{Kind: domain.CondEquals, Source: "last_response", Value: " yes, PLEASE "},
			true,
		},
		{
			"equals blank source vs empty value",
			domain.ConditionSpec{Kind: domain.CondEquals, Source: "blank", Value: ""},
			true,
		},
		{
			"duration greater",
			domain.ConditionSpec{Kind: domain.CondDurationGreater, Source: "call-1", Value: "30"},
			true,
		},
		{
			"duration greater equal is false",
			domain.ConditionSpec{Kind: domain.CondDurationGreater, Source: "call-1", Value: "45"},
			false,
		},
		{
			"duration less",
			domain.ConditionSpec{Kind: domain.CondDurationLess, Source: "call-1", Value: "60"},
			true,
		},
		{
			"duration with non-numeric source",
			domain.ConditionSpec{Kind: domain.CondDurationGreater, Source: "last_response", Value: "30"},
			false,
		},
		{
			"duration with missing source",
			domain.ConditionSpec{Kind: domain.CondDurationLess, Source: "absent", Value: "30"},
			false,
		},
		{
			"unknown kind",
			domain.ConditionSpec{Kind: domain.ConditionKind("regex"), Source: "last_response", Value: "yes"},
			false,
		},
	}

	eval := condition.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eval.Evaluate(context.Background(), tc.spec, data))
		})
	}
}

func TestEvaluateCustom(t *testing.T) {
	spec := domain.ConditionSpec{Kind: domain.CondCustom, Source: "score"}
	data := map[string]string{"score": "80"}

	t.Run("no resolver evaluates false", func(t *testing.T) {
		eval := condition.New()
		assert.False(t, eval.Evaluate(context.Background(), spec, data))
	})

	t.Run("resolver result is used", func(t *testing.T) {
		eval := condition.New(condition.WithCustomFunc(
			func(ctx context.Context, spec domain.ConditionSpec, data map[string]string) (bool, error) {
				return data[spec.Source] == "80", nil
			},
		))
		assert.True(t, eval.Evaluate(context.Background(), spec, data))
	})

	t.Run("resolver error evaluates false", func(t *testing.T) {
		eval := condition.New(condition.WithCustomFunc(
			func(ctx context.Context, spec domain.ConditionSpec, data map[string]string) (bool, error) {
				return true, errors.New("scorer offline")
			},
		))
		assert.False(t, eval.Evaluate(context.Background(), spec, data))
	})
}
