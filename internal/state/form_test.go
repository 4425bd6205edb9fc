package state

import (
	"testing"

	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultForm(t *testing.T) {
	form := DefaultForm()
	assert.Equal(t, affordability.Monthly, form.Income.Frequency)
	require.NotNil(t, form.LoanDuration)
	assert.Equal(t, 30, *form.LoanDuration)
	assert.Nil(t, form.HomeValue)
	assert.Nil(t, form.InterestRate)
	assert.Zero(t, form.AffordableHome)
}

func TestMergeOverwritesOnlyPresentFields(t *testing.T) {
	base := sampleForm()

	home := 400000.0
	text := ""
	merged := base.Merge(Update{HomeValue: &home, ResultText: &text})

	require.NotNil(t, merged.HomeValue)
	assert.Equal(t, 400000.0, *merged.HomeValue)
	assert.Equal(t, "", merged.ResultText)
	assert.Equal(t, base.AffordableHome, merged.AffordableHome)
	assert.Equal(t, base.Income, merged.Income)
	assert.Equal(t, *base.DownPayment, *merged.DownPayment)

	assert.Nil(t, base.HomeValue, "merge must not modify the receiver")
	assert.Equal(t, "summary", base.ResultText)
}

func TestMergeCopiesPointers(t *testing.T) {
	rate := 7.0
	merged := DefaultForm().Merge(Update{InterestRate: &rate})
	rate = 9.0

	require.NotNil(t, merged.InterestRate)
	assert.Equal(t, 7.0, *merged.InterestRate)
}

func TestMergeEmptyUpdate(t *testing.T) {
	base := sampleForm()
	assert.Equal(t, base, base.Merge(Update{}))
}

func TestMergeDerivesLoanAmount(t *testing.T) {
	home := 300000.0
	down := 60000.0

	form := DefaultForm().Merge(Update{HomeValue: &home})
	assert.Nil(t, form.LoanAmount, "loan amount needs both home value and down payment")

	form = form.Merge(Update{DownPayment: &down})
	require.NotNil(t, form.LoanAmount)
	assert.Equal(t, 240000.0, *form.LoanAmount)

	newHome := 350000.0
	form = form.Merge(Update{HomeValue: &newHome})
	assert.Equal(t, 290000.0, *form.LoanAmount)

	explicit := 100000.0
	form = form.Merge(Update{HomeValue: &home, LoanAmount: &explicit})
	assert.Equal(t, 100000.0, *form.LoanAmount, "an explicit loan amount wins")
}
