package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefinitions(t *testing.T) {
	src := []byte("#@gmic\n# comment\nfoo : e \"foo\"\n  e \"more\"\nbar:\nbaz : e $1\n")

	cmds, err := ParseDefinitions(src, "defs.gmic")
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	assert.Equal(t, "foo", cmds[0].Name)
	assert.Equal(t, `e "foo" e "more"`, cmds[0].Body)
	assert.Equal(t, "defs.gmic", cmds[0].Source)
	assert.False(t, cmds[0].TakesArgument())

	assert.Equal(t, "bar", cmds[1].Name)
	assert.Empty(t, cmds[1].Body)

	assert.Equal(t, "baz", cmds[2].Name)
	assert.True(t, cmds[2].TakesArgument())
}

func TestParseDefinitions_StopsAtTerminator(t *testing.T) {
	src := append([]byte("foo : e x\n"), Terminator)
	src = append(src, []byte("this is not a definition")...)

	cmds, err := ParseDefinitions(src, "")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "foo", cmds[0].Name)
}

func TestParseDefinitions_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"orphan continuation", "  e x\n", "continuation line outside of a command definition"},
		{"missing colon", "bad line\n", "invalid command definition 'bad line'"},
		{"location in message", "foo : e\nbad line\n", "defs.gmic:2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDefinitions([]byte(tc.src), "defs.gmic")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestScanDocs(t *testing.T) {
	src := []byte(`#@cli foo : arg
#@cli : Does foo.
#@cli : More.
foo : e foo
#@cli foo : other
#@cli : ignored
bar : e bar
`)

	docs := ScanDocs(src)
	require.Len(t, docs, 2)

	foo := docs[0]
	assert.Equal(t, "foo", foo.Name)
	assert.Equal(t, "arg", foo.Summary)
	assert.Equal(t, []string{"Does foo.", "More."}, foo.Lines)
	assert.True(t, foo.Documented)
	assert.True(t, foo.Defined)

	bar := docs[1]
	assert.Equal(t, "bar", bar.Name)
	assert.False(t, bar.Documented)
	assert.True(t, bar.Defined)
}

func TestScanDocs_ToleratesGarbage(t *testing.T) {
	docs := ScanDocs([]byte("this is : fine\n\x01\x02 not text\n#@cli : orphan\n"))
	assert.Empty(t, docs)
}

func TestHasMarker(t *testing.T) {
	assert.True(t, HasMarker([]byte("  \n\t#@gmic\nfoo : x")))
	assert.True(t, HasMarker([]byte("#@gmic")))
	assert.False(t, HasMarker([]byte("foo : x\n#@gmic")))
	assert.False(t, HasMarker(nil))
}
