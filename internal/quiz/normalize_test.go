package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsEmptyPrompt(t *testing.T) {
	items := Normalize([]RawItem{
		{Kind: "mcq", Prompt: "   "},
		{Kind: "tf", Prompt: "Is water wet?"},
	})
	require.Len(t, items, 1)
	assert.Equal(t, "Is water wet?", items[0].Prompt)
}

func TestNormalizeDefaultsKindAndDifficulty(t *testing.T) {
	items := Normalize([]RawItem{
		{Kind: "essay", Difficulty: "impossible", Prompt: "Explain gravity."},
	})
	require.Len(t, items, 1)
	assert.Equal(t, KindShort, items[0].Kind)
	assert.Equal(t, "easy", items[0].Difficulty)
}

func TestNormalizeTFSynonyms(t *testing.T) {
	cases := map[string]string{
		"true":    "A",
		"TRUE":    "A",
		"tačno":   "A",
		"tacno":   "A",
		"1":       "A",
		"false":   "B",
		"netačno": "B",
		"netacno": "B",
		"0":       "B",
		"no":      "B",
		"maybe":   "A", // unrecognized defaults to A
	}
	for input, want := range cases {
		items := Normalize([]RawItem{{Kind: "tf", Prompt: "P?", Correct: input}})
		require.Len(t, items, 1, "input %q", input)
		assert.Equal(t, want, items[0].Correct, "input %q", input)
		assert.Equal(t, []string{"A) True", "B) False"}, items[0].Options)
	}
}

func TestNormalizeTFBooleanAndNumericCorrect(t *testing.T) {
	items := Normalize([]RawItem{
		{Kind: "tf", Prompt: "P1?", Correct: true},
		{Kind: "tf", Prompt: "P2?", Correct: float64(0)},
	})
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Correct)
	assert.Equal(t, "B", items[1].Correct)
}

func TestNormalizeMCQPipeOptions(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: "A) Red|B) Green|C) Blue|D) Yellow",
		Correct: "green",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, []string{"A) Red", "B) Green", "C) Blue", "D) Yellow"}, items[0].Options)
	assert.Equal(t, "B", items[0].Correct)
}

func TestNormalizeMCQCommaOptionsWhenNoPipe(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: "Red, Green, Blue, Yellow",
		Correct: "C",
	}})
	require.Len(t, items, 1)
	require.Len(t, items[0].Options, 4)
	assert.Equal(t, "A) Red", items[0].Options[0])
	assert.Equal(t, "C", items[0].Correct)
}

func TestNormalizeMCQArrayOptions(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: []any{"Alpha", "Beta", "Gamma", "Delta"},
		Correct: "Delta",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, "D", items[0].Correct)
}

func TestNormalizeMCQPadsToFourOptions(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: "Only|Two",
		Correct: "Only",
	}})
	require.Len(t, items, 1)
	require.Len(t, items[0].Options, 4)
	assert.Equal(t, "A) Only", items[0].Options[0])
	assert.Equal(t, "C) None of the above", items[0].Options[2])
	assert.Equal(t, "A", items[0].Correct)
}

func TestNormalizeMCQDedupesAndCaps(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: "One|one|Two|Three|Four|Five|Six|Seven",
		Correct: "Two",
	}})
	require.Len(t, items, 1)
	assert.Len(t, items[0].Options, 6)
	assert.Equal(t, "B", items[0].Correct)
}

func TestNormalizeMCQCorrectLetterOutOfRange(t *testing.T) {
	items := Normalize([]RawItem{{
		Kind:    "mcq",
		Prompt:  "Pick one.",
		Options: "One|Two|Three|Four",
		Correct: "Z",
	}})
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Correct)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize([]RawItem{{
		Kind:       "mcq",
		Difficulty: "Medium",
		Prompt:     "Pick one.",
		Options:    "a) One|b) Two|c) Three|d) Four",
		Correct:    "b",
	}})
	require.Len(t, first, 1)

	again := Normalize([]RawItem{{
		Kind:       first[0].Kind,
		Difficulty: first[0].Difficulty,
		Prompt:     first[0].Prompt,
		Options:    first[0].EncodedOptions(),
		Correct:    first[0].Correct,
	}})
	require.Len(t, again, 1)
	assert.Equal(t, first[0].Options, again[0].Options)
	assert.Equal(t, first[0].Correct, again[0].Correct)
	assert.Equal(t, first[0].Difficulty, again[0].Difficulty)
}
