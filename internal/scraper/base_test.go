package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobRecord_Fields(t *testing.T) {
	tests := []struct {
		name                        string
		rec                         JobRecord
		hasTitle, hasEmail, isEmpty bool
	}{
		{name: "complete", rec: JobRecord{Title: "Short film", Email: "a@x.com", RawText: "Short film"}, hasTitle: true, hasEmail: true},
		{name: "text only", rec: JobRecord{RawText: "NEW\nBudget"}},
		{name: "matched but blank", rec: JobRecord{MatchedCategory: true}, isEmpty: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasTitle, tt.rec.HasTitle())
			assert.Equal(t, tt.hasEmail, tt.rec.HasEmail())
			assert.Equal(t, tt.isEmpty, tt.rec.IsEmpty())
		})
	}
}
