// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package conflist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qm-fetch/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.Conference
	}{
		{
			name:  "two pairs in order",
			input: "2019 773831\n2022 1139644\n",
			want: []types.Conference{
				{Year: "2019", IndicoID: "773831"},
				{Year: "2022", IndicoID: "1139644"},
			},
		},
		{
			name:  "tabs and extra spaces",
			input: "2018\t   656452  \n",
			want:  []types.Conference{{Year: "2018", IndicoID: "656452"}},
		},
		{
			name:  "blank lines and comments ignored",
			input: "# QM editions\n\n2019 773831\n   \n# end\n",
			want:  []types.Conference{{Year: "2019", IndicoID: "773831"}},
		},
		{
			name:  "no trailing newline",
			input: "2023 1139644",
			want:  []types.Conference{{Year: "2023", IndicoID: "1139644"}},
		},
		{
			name:  "duplicate years kept",
			input: "2019 1\n2019 2\n",
			want: []types.Conference{
				{Year: "2019", IndicoID: "1"},
				{Year: "2019", IndicoID: "2"},
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"single token", "2019 773831\n2022\n", 2},
		{"three tokens", "2019 773831 extra\n", 1},
		{"after comment", "# header\n\n2019 1 2\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			var mErr *MalformedInputError
			require.True(t, errors.As(err, &mErr), "want MalformedInputError, got %v", err)
			assert.Equal(t, tt.wantLine, mErr.Line)
		})
	}
}

func TestParseYAML(t *testing.T) {
	input := `
- year: "2019"
  indico_id: "773831"
- year: 2022
  indico_id: 1139644
`
	got, err := ParseYAML(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []types.Conference{
		{Year: "2019", IndicoID: "773831"},
		{Year: "2022", IndicoID: "1139644"},
	}, got)
}

func TestParseYAMLMissingField(t *testing.T) {
	input := `
- year: "2019"
  indico_id: "773831"
- year: "2022"
`
	_, err := ParseYAML(strings.NewReader(input))
	var mErr *MalformedInputError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, 2, mErr.Line)
}

func TestParseYAMLEmpty(t *testing.T) {
	got, err := ParseYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "ids.txt")
	require.NoError(t, os.WriteFile(txt, []byte("2019 773831\n"), 0o644))
	got, err := Read(txt)
	require.NoError(t, err)
	assert.Equal(t, []types.Conference{{Year: "2019", IndicoID: "773831"}}, got)

	yml := filepath.Join(dir, "ids.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("- {year: \"2022\", indico_id: \"1139644\"}\n"), 0o644))
	got, err = Read(yml)
	require.NoError(t, err)
	assert.Equal(t, []types.Conference{{Year: "2022", IndicoID: "1139644"}}, got)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	require.NoError(t, os.WriteFile(path, []byte("2019\n"), 0o644))
	_, err := Read(path)
	var mErr *MalformedInputError
	require.ErrorAs(t, err, &mErr)
	assert.Contains(t, err.Error(), path)
}
