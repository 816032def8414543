package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	type payload struct {
		Intent string `json:"intent"`
	}

	cases := []struct {
		name string
		text string
	}{
		{"bare", `{"intent": "ADD_TASK"}`},
		{"fenced", "```json\n{\"intent\": \"ADD_TASK\"}\n```"},
		{"fenced no language", "```\n{\"intent\": \"ADD_TASK\"}\n```"},
		{"surrounding whitespace", "  \n{\"intent\": \"ADD_TASK\"}\n  "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got payload
			require.NoError(t, cleanJSON(tc.text, &got))
			assert.Equal(t, "ADD_TASK", got.Intent)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		var got payload
		err := cleanJSON("I think the task is...", &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "malformed model response")
	})
}

func TestParseTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("empty is nil without error", func(t *testing.T) {
		got, err := parseTime("", loc)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("rfc3339 keeps offset", func(t *testing.T) {
		got, err := parseTime("2025-06-10T15:00:00Z", loc)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Equal(time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)))
		assert.Equal(t, loc, got.Location())
	})

	t.Run("naive datetime is local", func(t *testing.T) {
		got, err := parseTime("2025-06-10T15:00:00", loc)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, time.Date(2025, time.June, 10, 15, 0, 0, 0, loc), *got)
	})

	t.Run("space separated", func(t *testing.T) {
		got, err := parseTime("2025-06-10 15:00:00", loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 10, 15, 0, 0, 0, loc), *got)
	})

	t.Run("date only is midnight local", func(t *testing.T) {
		got, err := parseTime("2025-06-10", loc)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, loc), *got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseTime("next tuesday-ish", loc)
		require.Error(t, err)
	})
}
