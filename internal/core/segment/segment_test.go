package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphrag/internal/core/model"
)

func texts(chunks []model.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Text
	}
	return out
}

// covered reports whether the chunk spans cover [0, n) without gaps.
func covered(chunks []model.Chunk, n int) bool {
	reach := 0
	for _, c := range chunks {
		if c.Start > reach {
			return false
		}
		if c.End > reach {
			reach = c.End
		}
	}
	return reach == n
}

func TestSplitShortText(t *testing.T) {
	chunks, err := Split("hello world", 20, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 11, chunks[0].End)
}

func TestSplitExactSize(t *testing.T) {
	chunks, err := Split("1234567890", 10, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, texts(chunks))
}

func TestSplitHardCut(t *testing.T) {
	chunks, err := Split("1234567890ABCDEFGHIJ", 10, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890", "90ABCDEFGH", "GHIJ"}, texts(chunks))
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

func TestSplitAtSentenceBoundary(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta eta theta."
	chunks, err := Split(text, 20, 3)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "Alpha beta gamma.", chunks[0].Text)
	assert.True(t, covered(chunks, len([]rune(text))))
}

func TestSplitIgnoresEarlyBoundary(t *testing.T) {
	// the only period sits at offset 1, which is not past half the window
	chunks, err := Split("a.bcdefghijklmnopqrstuvwxyz", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "a.bcdefghi", chunks[0].Text)
}

func TestSplitCJK(t *testing.T) {
	text := "张三是一名工程师。他在北京工作。他喜欢编程和阅读书籍。"
	chunks, err := Split(text, 12, 2)
	require.NoError(t, err)
	assert.Equal(t, "张三是一名工程师。", chunks[0].Text)
	assert.True(t, covered(chunks, len([]rune(text))))
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 12)
	}
}

func TestSplitCoverage(t *testing.T) {
	samples := []string{
		strings.Repeat("word ", 200),
		strings.Repeat("Short line.\n", 50),
		strings.Repeat("句子。", 300),
		strings.Repeat("x", 1234),
	}
	for _, text := range samples {
		for _, size := range []int{7, 16, 64, 100} {
			for _, overlap := range []int{0, 1, size / 2, size - 1} {
				chunks, err := Split(text, size, overlap)
				require.NoError(t, err)
				assert.True(t, covered(chunks, len([]rune(text))), "size=%d overlap=%d", size, overlap)
				for i := 1; i < len(chunks); i++ {
					assert.Greater(t, chunks[i].Start, chunks[i-1].Start)
				}
			}
		}
	}
}

func TestSplitRejectsBadParameters(t *testing.T) {
	_, err := Split("abc", 0, 0)
	assert.Error(t, err)
	_, err = Split("abc", 10, 10)
	assert.Error(t, err)
	_, err = Split("abc", 10, -1)
	assert.Error(t, err)
}

func TestSplitLargeOverlapNeverRepeatsAChunk(t *testing.T) {
	text := "abcdef.ghijklmnop.qrstuvwxyz"
	chunks, err := Split(text, 10, 8)
	require.NoError(t, err)
	assert.True(t, covered(chunks, len([]rune(text))))
	for i := 1; i < len(chunks); i++ {
		assert.Greater(t, chunks[i].End, chunks[i-1].End, "chunk %d ends inside chunk %d", i, i-1)
	}
	assert.Equal(t, []string{"abcdef.", "ghijklmnop", "ijklmnop.", "jklmnop.qr"}, texts(chunks)[:4])
}
