package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreview_HeaderAndFiveRows(t *testing.T) {
	input := "a,b,c\n1,2,3\n4,5,6\n7,8,9\n10,11,12\n13,14,15\n16,17,18\n"

	p, err := ParsePreview(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, p.Header)
	require.Len(t, p.Rows, 5)
	assert.Equal(t, []string{"1", "2", "3"}, p.Rows[0])
	assert.Equal(t, []string{"13", "14", "15"}, p.Rows[4])
	assert.True(t, p.Truncated)
	assert.Empty(t, p.Warnings)
}

func TestParsePreview_ShortFile(t *testing.T) {
	p, err := ParsePreview(strings.NewReader("name,dept\r\nAsha,CSE\r\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "dept"}, p.Header)
	assert.Equal(t, [][]string{{"Asha", "CSE"}}, p.Rows)
	assert.False(t, p.Truncated)
}

func TestParsePreview_ExactlyFiveRowsIsNotTruncated(t *testing.T) {
	p, err := ParsePreview(strings.NewReader("h\n1\n2\n3\n4\n5\n"))
	require.NoError(t, err)
	assert.Len(t, p.Rows, 5)
	assert.False(t, p.Truncated)
}

func TestParsePreview_SkipsBlankLines(t *testing.T) {
	p, err := ParsePreview(strings.NewReader("\n\na,b\n\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.Header)
	assert.Len(t, p.Rows, 1)
}

func TestParsePreview_QuotesAreNotUnderstood(t *testing.T) {
	p, err := ParsePreview(strings.NewReader("name,city\n\"Rao, K\",Pune\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{`"Rao`, ` K"`, "Pune"}, p.Rows[0])
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "line 2 has 3 fields")
}

func TestParsePreview_Empty(t *testing.T) {
	_, err := ParsePreview(strings.NewReader("\n  \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestParsePreview_Binary(t *testing.T) {
	_, err := ParsePreview(strings.NewReader("\xff\xfe\x00a\n"))
	assert.Error(t, err)
}

func TestValidTable(t *testing.T) {
	for _, name := range Tables {
		assert.True(t, ValidTable(name), name)
	}
	assert.False(t, ValidTable("users"))
	assert.False(t, ValidTable("Student"))
	assert.ErrorIs(t, checkTable("users"), ErrUnknownTable)
}
