// Package prescription gates order placement for controlled medicines.
// The rule is a CEL expression so pharmacies can tighten it (additional
// schedules, blanket bans) through configuration without a code change.
package prescription

import (
	"context"

	"github.com/google/cel-go/cel"

	"dispensary/internal/core/apperror"
)

// DefaultRule allows a medicine unless it is Schedule H or flagged as
// prescription-only, in which case an approved prescription must be on
// the order.
const DefaultRule = `!(requires_prescription || schedule == 'H') || prescription_approved`

// Input is the fact set a rule evaluates against, per order line.
type Input struct {
	Schedule             string
	RequiresPrescription bool
	PrescriptionApproved bool
}

// Policy is a compiled dispensing rule. Safe for concurrent use.
type Policy struct {
	program cel.Program
}

// NewPolicy compiles the CEL rule. The expression must evaluate to bool.
func NewPolicy(rule string) (*Policy, error) {
	env, err := cel.NewEnv(
		cel.Variable("schedule", cel.StringType),
		cel.Variable("requires_prescription", cel.BoolType),
		cel.Variable("prescription_approved", cel.BoolType),
	)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid dispensing rule").
			WithCause(issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, apperror.NewValidation("dispensing rule must evaluate to bool").
			WithDetail("output_type", ast.OutputType().String())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	return &Policy{program: program}, nil
}

// MustPolicy compiles the rule or panics. For the default rule and tests.
func MustPolicy(rule string) *Policy {
	p, err := NewPolicy(rule)
	if err != nil {
		panic(err)
	}
	return p
}

// Allows evaluates the rule for one order line.
func (p *Policy) Allows(ctx context.Context, in Input) (bool, error) {
	out, _, err := p.program.ContextEval(ctx, map[string]any{
		"schedule":              in.Schedule,
		"requires_prescription": in.RequiresPrescription,
		"prescription_approved": in.PrescriptionApproved,
	})
	if err != nil {
		return false, apperror.NewInternal(err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewInternal(nil).
			WithDetail("reason", "dispensing rule returned non-bool")
	}
	return allowed, nil
}
