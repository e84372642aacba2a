package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in   string
		want Choice
	}{
		{"1", ChoiceFood},
		{"2\n", ChoiceActivities},
		{" 3\r\n", ChoiceBoth},
	}
	for _, tt := range tests {
		got, err := ParseChoice(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseChoice_Invalid(t *testing.T) {
	for _, in := range []string{"", "4", "0", "food", "12", "\n"} {
		_, err := ParseChoice(in)
		assert.True(t, errors.Is(err, ErrInvalidChoice), "input %q", in)
	}
}

func TestChoice_Header(t *testing.T) {
	assert.Equal(t, "Food Recommendations", ChoiceFood.Header())
	assert.Equal(t, "Activity Recommendations", ChoiceActivities.Header())
	assert.Equal(t, "Food & Activity Recommendations", ChoiceBoth.Header())
	assert.Equal(t, "", Choice("9").Header())
}

func TestChoice_Topics(t *testing.T) {
	assert.True(t, ChoiceFood.WantsFood())
	assert.False(t, ChoiceFood.WantsActivities())
	assert.False(t, ChoiceActivities.WantsFood())
	assert.True(t, ChoiceActivities.WantsActivities())
	assert.True(t, ChoiceBoth.WantsFood())
	assert.True(t, ChoiceBoth.WantsActivities())
}
