package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyPattern(t *testing.T) {
	assert.Equal(t, "", FuzzyPattern("   "))
	assert.Equal(t, `(?i)a.*b`, FuzzyPattern("ab"))
	assert.Equal(t, `(?i)a.*\s*.*b`, FuzzyPattern("a b"))
	assert.Equal(t, `(?i)\(.*\+`, FuzzyPattern("(+"))
}

func TestFuzzyMatcher(t *testing.T) {
	re, err := FuzzyMatcher("ab")
	require.NoError(t, err)
	assert.True(t, re.MatchString("Xa...Yb...Z"))
	assert.True(t, re.MatchString("AB"))
	assert.False(t, re.MatchString("ba"))

	re, err = FuzzyMatcher("fiscal deficit")
	require.NoError(t, err)
	assert.True(t, re.MatchString("What is the Fiscal Deficit of India?"))
	assert.True(t, re.MatchString("fiscaldeficit"))

	re, err = FuzzyMatcher("c++ (gs)")
	require.NoError(t, err)
	assert.True(t, re.MatchString("C++ notes (GS paper)"))

	re, err = FuzzyMatcher("")
	require.NoError(t, err)
	assert.Nil(t, re)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"polity", "gs2"}, NormalizeTags([]string{" Polity", "GS2", "polity", ""}))
	assert.Empty(t, NormalizeTags(nil))
}
