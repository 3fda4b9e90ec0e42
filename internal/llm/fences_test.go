package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONPayload(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "fenced json block",
			content: "Here you go:\n```json\n[{\"filename\": \"a.pdf\"}]\n```\nLet me know!",
			want:    `[{"filename": "a.pdf"}]`,
		},
		{
			name:    "fence without language tag",
			content: "```\n{\"score\": 80}\n```",
			want:    `{"score": 80}`,
		},
		{
			name:    "bare array with prose around it",
			content: "Sure! [1, 2, 3] as requested.",
			want:    `[1, 2, 3]`,
		},
		{
			name:    "bare object",
			content: "The verdict is {\"score\": 12, \"reason\": \"weak\"} overall.",
			want:    `{"score": 12, "reason": "weak"}`,
		},
		{
			name:    "array preferred over nested objects",
			content: `[{"a": 1}, {"b": 2}]`,
			want:    `[{"a": 1}, {"b": 2}]`,
		},
		{
			name:    "no payload",
			content: "I cannot produce a shortlist for this job.",
			want:    "",
		},
		{
			name:    "empty",
			content: "   ",
			want:    "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractJSONPayload(tc.content)
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tc.want, string(got))
		})
	}
}
