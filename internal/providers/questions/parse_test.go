package questions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		items, err := Parse(`[
			{"order": 2, "question": "What is a queue?", "allocated_time": 70},
			{"order": 1, "question": " Explain stacks ", "allocated_time": 80}
		]`)
		require.NoError(t, err)
		assert.Equal(t, []Item{
			{Order: 1, Question: "Explain stacks", AllocatedTime: 80},
			{Order: 2, Question: "What is a queue?", AllocatedTime: 70},
		}, items)
	})

	t.Run("fenced", func(t *testing.T) {
		items, err := Parse("```json\n[{\"order\":1,\"question\":\"Explain stacks\",\"allocated_time\":80}]\n```")
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("extra keys tolerated", func(t *testing.T) {
		_, err := Parse(`[{"order":1,"question":"q","allocated_time":60,"hint":"x"}]`)
		assert.NoError(t, err)
	})
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"missing allocated_time": `[{"order":1,"question":"Explain stacks"}]`,
		"missing order":          `[{"question":"Explain stacks","allocated_time":80}]`,
		"missing question":       `[{"order":1,"allocated_time":80}]`,
		"blank question":         `[{"order":1,"question":"  ","allocated_time":80}]`,
		"zero time":              `[{"order":1,"question":"q","allocated_time":0}]`,
		"negative time":          `[{"order":1,"question":"q","allocated_time":-5}]`,
		"fractional time":        `[{"order":1,"question":"q","allocated_time":80.5}]`,
		"string time":            `[{"order":1,"question":"q","allocated_time":"80"}]`,
		"empty list":             `[]`,
		"object not list":        `{"questions":[]}`,
		"gap in orders":          `[{"order":1,"question":"a","allocated_time":60},{"order":3,"question":"b","allocated_time":60}]`,
		"duplicate orders":       `[{"order":1,"question":"a","allocated_time":60},{"order":1,"question":"b","allocated_time":60}]`,
		"zero based":             `[{"order":0,"question":"a","allocated_time":60}]`,
		"prose":                  `Sure! Here are your questions.`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw)
			assert.Error(t, err)
		})
	}
}
