package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticSameTypeOnly(t *testing.T) {
	v, err := Add(Int(3), Int(4))
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)

	v, err = Mul(Float(1.5), Float(2))
	require.NoError(t, err)
	assert.Equal(t, Float(3), v)

	_, err = Add(Int(1), Float(2))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)

	_, err = Sub(Bool(true), Bool(false))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)
}

func TestDivideByZero(t *testing.T) {
	_, err := Div(Int(1), Int(0))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)
	assert.Contains(t, err.Error(), "Cannot divide by zero")

	_, err = Div(Float(1), Float(0))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)

	v, err := Div(Int(10), Int(3))
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)
}

func TestNegate(t *testing.T) {
	v, err := Negate(Int(5))
	require.NoError(t, err)
	assert.Equal(t, Int(-5), v)

	v, err = Negate(Float(-2.5))
	require.NoError(t, err)
	assert.Equal(t, Float(2.5), v)

	_, err = Negate(Bool(true))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)
}

func TestCompareMismatchIsFalseNotError(t *testing.T) {
	for _, cmp := range []func(a, b Value) (Value, error){CompareEq, CompareNe, CompareLt, CompareGt} {
		v, err := cmp(Int(1), Bool(true))
		require.NoError(t, err)
		assert.Equal(t, Bool(false), v)
	}
}

func TestCompareMatchingNullIsTrue(t *testing.T) {
	for _, cmp := range []func(a, b Value) (Value, error){CompareEq, CompareNe, CompareLt, CompareGt} {
		v, err := cmp(Null(), Null())
		require.NoError(t, err)
		assert.Equal(t, Bool(true), v)
	}
}

func TestCompareOrdering(t *testing.T) {
	v, err := CompareLt(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = CompareGt(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)

	v, err = CompareGt(Float(2), Float(1))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = CompareEq(Int(7), Int(7))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = CompareNe(Int(7), Int(7))
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)
}

func TestLogicalRequiresBools(t *testing.T) {
	v, err := LogicalAnd(Bool(true), Bool(false))
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)

	v, err = LogicalOr(Bool(false), Bool(true))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	_, err = LogicalAnd(Int(1), Bool(true))
	require.Error(t, err)
	assert.Equal(t, ErrArithmetic, err.(*RuntimeError).Code)
}

func TestCallableRef(t *testing.T) {
	v := FromLocator(Locator{Region: RegionRoutines, ID: 3})
	assert.True(t, v.IsCallableRef())

	v = FromLocator(Locator{Region: RegionConsts, ID: 3})
	assert.False(t, v.IsCallableRef())
	assert.False(t, Int(3).IsCallableRef())
}
