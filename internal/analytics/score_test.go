package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/domain"
)

func TestEVScore(t *testing.T) {
	got := EVScore(scored(10, 20, 30))
	require.NotNil(t, got)
	assert.Equal(t, 20.0, *got)

	got = EVScore(scored(10, 10, 11))
	require.NotNil(t, got)
	assert.Equal(t, 10.33, *got, "rounded to two decimals")
}

func TestEVScoreIgnoresMissingAndNonFinite(t *testing.T) {
	assert.Nil(t, EVScore(nil))
	assert.Nil(t, EVScore([]domain.Message{}))
	assert.Nil(t, EVScore([]domain.Message{{}, {}}))
	assert.Nil(t, EVScore(scored(math.NaN(), math.Inf(1))))

	messages := append(scored(50, math.NaN()), domain.Message{})
	got := EVScore(messages)
	require.NotNil(t, got)
	assert.Equal(t, 50.0, *got)
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name   string
		thread domain.Thread
		want   domain.Status
	}{
		{"plain", domain.Thread{}, domain.StatusActive},
		{"busy", domain.Thread{Busy: true}, domain.StatusPending},
		{"completed beats busy", domain.Thread{Completed: true, Busy: true}, domain.StatusCompleted},
		{"flag", domain.Thread{Flag: true, Completed: true}, domain.StatusFlagged},
		{"flag for review", domain.Thread{FlagForReview: true}, domain.StatusFlagged},
		{"spam beats completed", domain.Thread{Spam: true, Completed: true}, domain.StatusSpam},
		{"spam beats everything", domain.Thread{Spam: true, Flag: true, Busy: true}, domain.StatusSpam},
		{"override alone does nothing", domain.Thread{FlagReviewOverride: true}, domain.StatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.thread))
		})
	}
}
