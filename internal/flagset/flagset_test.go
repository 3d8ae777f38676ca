package flagset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	t.Run("canonical spellings", func(t *testing.T) {
		f, pos, err := ParseToken("sensitive")
		require.NoError(t, err)
		assert.Equal(t, Sensitive, f)
		assert.True(t, pos)

		f, pos, err = ParseToken("disableInterpolation")
		require.NoError(t, err)
		assert.Equal(t, DisableInterpolation, f)
		assert.True(t, pos)
	})

	t.Run("case and separator insensitive", func(t *testing.T) {
		for _, tok := range []string{"NOT_REQUIRED", "not-required", "notrequired", "NotRequired"} {
			f, pos, err := ParseToken(tok)
			require.NoError(t, err, tok)
			assert.Equal(t, NotRequired, f, tok)
			assert.True(t, pos, tok)
		}
	})

	t.Run("synonyms", func(t *testing.T) {
		f, pos, err := ParseToken("optional")
		require.NoError(t, err)
		assert.Equal(t, NotRequired, f)
		assert.True(t, pos)

		f, pos, err = ParseToken("noAdd")
		require.NoError(t, err)
		assert.Equal(t, VariablesOnly, f)
		assert.True(t, pos)
	})

	t.Run("negations", func(t *testing.T) {
		for _, tok := range []string{"no_optional", "NOT_OPTIONAL", "nooptional", "no_not_required"} {
			f, pos, err := ParseToken(tok)
			require.NoError(t, err, tok)
			assert.Equal(t, NotRequired, f, tok)
			assert.False(t, pos, tok)
		}
	})

	t.Run("positive lookup wins over negation splitting", func(t *testing.T) {
		// noAddToVariables starts with "no" but is itself a positive flag.
		f, pos, err := ParseToken("noAddToVariables")
		require.NoError(t, err)
		assert.Equal(t, NoAddToVariables, f)
		assert.True(t, pos)
	})

	t.Run("unknown token is a hard error", func(t *testing.T) {
		_, _, err := ParseToken("bogus")
		require.Error(t, err)
		var unknown *UnknownFlagError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "bogus", unknown.Token)
	})
}

func TestParseCSV(t *testing.T) {
	t.Run("multiple tokens", func(t *testing.T) {
		s, err := ParseCSV("optional, sensitive ,lock")
		require.NoError(t, err)
		assert.True(t, s.Has(NotRequired))
		assert.True(t, s.Has(Sensitive))
		assert.True(t, s.Has(Lock))
		assert.False(t, s.Has(Inherit))
	})

	t.Run("blank tokens ignored", func(t *testing.T) {
		s, err := ParseCSV("  , sensitive ,,")
		require.NoError(t, err)
		assert.True(t, s.Has(Sensitive))
	})

	t.Run("negation clears an earlier token", func(t *testing.T) {
		s, err := ParseCSV("optional,no_optional")
		require.NoError(t, err)
		assert.False(t, s.Has(NotRequired))
	})

	t.Run("negation clears an already-set flag", func(t *testing.T) {
		s := Set(0).With(NotRequired)
		s, err := s.ApplyCSV("no_optional")
		require.NoError(t, err)
		assert.False(t, s.Has(NotRequired))
	})

	t.Run("unknown token aborts", func(t *testing.T) {
		_, err := ParseCSV("sensitive,garbage")
		require.Error(t, err)
		assert.ErrorContains(t, err, "garbage")
	})
}

func TestFormatRoundTrip(t *testing.T) {
	s, err := ParseCSV("optional,forbid_empty,sensitive")
	require.NoError(t, err)

	csv := s.Format()
	reparsed, err := ParseCSV(csv)
	require.NoError(t, err)
	assert.Equal(t, s, reparsed)
	assert.Equal(t, "notRequired,forbidEmpty,sensitive", csv)
}

func TestSetOperations(t *testing.T) {
	s := Set(0).With(Lock).With(Sensitive)
	assert.True(t, s.Has(Lock))

	s2 := s.Without(Lock)
	assert.False(t, s2.Has(Lock))
	assert.True(t, s.Has(Lock), "Without must not mutate the receiver")

	u := s2.Union(Set(0).With(Inherit))
	assert.True(t, u.Has(Sensitive))
	assert.True(t, u.Has(Inherit))

	assert.True(t, Set(0).IsEmpty())
	assert.False(t, s.IsEmpty())
}
