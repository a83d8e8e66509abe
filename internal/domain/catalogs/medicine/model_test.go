package medicine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispensary/internal/core/apperror"
	"dispensary/internal/core/id"
	"dispensary/internal/core/types"
)

func TestMedicine_Validate(t *testing.T) {
	ctx := context.Background()

	m := New("PARA-500", "Paracetamol 500mg", types.MustMoney("2.50"))
	assert.NoError(t, m.Validate(ctx))

	noName := New("X", "", types.MustMoney("1"))
	err := noName.Validate(ctx)
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	noSchedule := New("X", "Something", types.MustMoney("1"))
	noSchedule.Schedule = ""
	assert.Error(t, noSchedule.Validate(ctx))

	negative := New("X", "Something", types.MustMoney("-0.01"))
	assert.Error(t, negative.Validate(ctx))
}

func TestNew_DefaultsToOTC(t *testing.T) {
	m := New("IBU-400", "Ibuprofen 400mg", types.MustMoney("3.20"))
	assert.Equal(t, ScheduleOTC, m.Schedule)
	assert.False(t, m.RequiresPrescription)
	assert.False(t, id.IsNil(m.ID))
}
