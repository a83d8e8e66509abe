package prescription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRule(t *testing.T) {
	policy := MustPolicy(DefaultRule)
	ctx := context.Background()

	cases := []struct {
		name    string
		in      Input
		allowed bool
	}{
		{"otc medicine", Input{Schedule: "OTC"}, true},
		{"schedule h without prescription", Input{Schedule: "H"}, false},
		{"schedule h with prescription", Input{Schedule: "H", PrescriptionApproved: true}, true},
		{"flagged without prescription", Input{Schedule: "OTC", RequiresPrescription: true}, false},
		{"flagged with prescription", Input{Schedule: "OTC", RequiresPrescription: true, PrescriptionApproved: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := policy.Allows(ctx, tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestNewPolicy_RejectsBadRules(t *testing.T) {
	_, err := NewPolicy(`schedule ==`)
	assert.Error(t, err)

	_, err = NewPolicy(`schedule`) // string, not bool
	assert.Error(t, err)
}

func TestNewPolicy_CustomRule(t *testing.T) {
	// A pharmacy banning Schedule X outright.
	policy := MustPolicy(`schedule != 'X' && (` + DefaultRule + `)`)
	ctx := context.Background()

	allowed, err := policy.Allows(ctx, Input{Schedule: "X", PrescriptionApproved: true})
	require.NoError(t, err)
	assert.False(t, allowed)
}
