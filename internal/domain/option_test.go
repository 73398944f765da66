package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionType(t *testing.T) {
	typ, err := ParseOptionType(" CALL ")
	require.NoError(t, err)
	assert.Equal(t, Call, typ)

	typ, err = ParseOptionType("put")
	require.NoError(t, err)
	assert.Equal(t, Put, typ)

	_, err = ParseOptionType("american")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOptionType_Title(t *testing.T) {
	assert.Equal(t, "Call", Call.Title())
	assert.Equal(t, "Put", Put.Title())
	assert.Equal(t, "", OptionType("").Title())
}

func TestPayoff(t *testing.T) {
	assert.Equal(t, 22.0, Payoff(Call, 122, 100))
	assert.Equal(t, 0.0, Payoff(Call, 80, 100))
	assert.Equal(t, 20.0, Payoff(Put, 80, 100))
	assert.Equal(t, 0.0, Payoff(Put, 122, 100))
}

func TestValidate_AcceptsZeroSigmaAndZeroSteps(t *testing.T) {
	p := baseParams(0, Put)
	p.Sigma = 0
	assert.NoError(t, p.Validate(0))
}

func TestValidate_NegativeRateIsValid(t *testing.T) {
	p := baseParams(3, Call)
	p.R = -0.05
	assert.NoError(t, p.Validate(0))
}

func TestParameterError_Message(t *testing.T) {
	p := baseParams(3, Call)
	p.K = 0
	err := p.Validate(0)
	require.Error(t, err)
	assert.Equal(t, "invalid parameter K=0: must be a finite number > 0", err.Error())
}

func TestLattice_Accessors(t *testing.T) {
	l := newLattice(3)
	assert.Equal(t, 3, l.Steps())
	assert.Equal(t, 10, l.NodeCount())
	assert.Len(t, l.Terminal(), 4)

	_, ok := l.Node(2, 3)
	assert.False(t, ok)
	_, ok = l.Node(4, 0)
	assert.False(t, ok)
	_, ok = l.Node(3, 3)
	assert.True(t, ok)

	var empty Lattice
	assert.Equal(t, -1, empty.Steps())
	assert.Equal(t, TreeNode{}, empty.Root())
	assert.Nil(t, empty.Terminal())
}

func TestLattice_StepsDoNotAlias(t *testing.T) {
	l := newLattice(2)
	l[1] = append(l[1], TreeNode{Step: 99})
	assert.Equal(t, 0, l[2][0].Step)
}
