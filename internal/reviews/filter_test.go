package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want Filter
	}{
		{"2023", YearFilter{Year: "2023"}},
		{"0000", YearFilter{Year: "0000"}},
		{"user456", ReviewerFilter{Name: "user456"}},
		{"123", ReviewerFilter{Name: "123"}},
		{"20234", ReviewerFilter{Name: "20234"}},
		{" 2023", ReviewerFilter{Name: " 2023"}},
		{"2023\n", ReviewerFilter{Name: "2023\n"}},
		{"2023-11", ReviewerFilter{Name: "2023-11"}},
		{"２０２３", ReviewerFilter{Name: "２０２３"}},
		{"Jane Smith", ReviewerFilter{Name: "Jane Smith"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.key))
		})
	}
}

func TestFilterLabel(t *testing.T) {
	assert.Equal(t, "year", Classify("1999").Label())
	assert.Equal(t, "reviewer", Classify("user123").Label())
}
