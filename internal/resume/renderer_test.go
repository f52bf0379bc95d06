package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complan-go/internal/types"
)

func TestRenderPDFProducesValidDocument(t *testing.T) {
	stats := types.LeetCodeStats{
		Available:   true,
		TotalSolved: 42,
		EasySolved:  20, TotalEasy: 800,
		MediumSolved: 18, TotalMedium: 1700,
		HardSolved: 4, TotalHard: 750,
	}

	data, err := RenderPDF(validProfile(), stats)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Contains(t, string(data[len(data)-32:]), "%%EOF")
}

func TestRenderPDFWithUnavailableStats(t *testing.T) {
	data, err := RenderPDF(validProfile(), types.LeetCodeStats{Available: false})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestStatsLinesAvailable(t *testing.T) {
	lines := statsLines(types.LeetCodeStats{
		Available:   true,
		TotalSolved: 100,
		EasySolved:  50, TotalEasy: 800,
		MediumSolved: 40, TotalMedium: 1700,
		HardSolved: 10, TotalHard: 750,
	})
	require.Len(t, lines, 4)
	assert.Equal(t, "Total Problems Solved: 100", lines[0])
	assert.Equal(t, "Easy Problems Solved: 50 / 800", lines[1])
	assert.Equal(t, "Medium Problems Solved: 40 / 1700", lines[2])
	assert.Equal(t, "Hard Problems Solved: 10 / 750", lines[3])
}

func TestStatsLinesUnavailableShowsNA(t *testing.T) {
	lines := statsLines(types.LeetCodeStats{Available: false})
	require.Len(t, lines, 4)
	for _, line := range lines {
		assert.Contains(t, line, "N/A")
	}
}
