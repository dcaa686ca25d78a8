package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"   yaml:"name"`
	Count  int            `json:"count"  yaml:"count"`
	Values map[string]int `json:"values" yaml:"values"`
}

func sampleState() testState {
	return testState{Name: "doge", Count: 42, Values: map[string]int{"memes": 30, "dankmemes": 12}}
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	codecs := map[string]Codec{
		"json":     NewJSONCodec(),
		"compact":  &JSONCodec{},
		"yaml":     NewYAMLCodec(),
		"json.lz4": NewLZ4Codec(NewJSONCodec()),
		"yaml.lz4": NewLZ4Codec(NewYAMLCodec()),
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			require.NoError(t, codec.Encode(&buf, sampleState()))

			var decoded testState

			require.NoError(t, codec.Decode(&buf, &decoded))
			assert.Equal(t, sampleState(), decoded)
		})
	}
}

func TestCodec_Extensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
	assert.Equal(t, ".yaml", NewYAMLCodec().Extension())
	assert.Equal(t, ".json.lz4", NewLZ4Codec(NewJSONCodec()).Extension())
}

func TestJSONCodec_CompactNoIndent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, (&JSONCodec{}).Encode(&buf, sampleState()))
	assert.LessOrEqual(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&buf, sampleState()))
	assert.Contains(t, buf.String(), defaultIndent+`"name"`)
}

func TestJSONCodec_Errors(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewJSONCodec().Decode(strings.NewReader("not valid json{{{"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")

	err = NewJSONCodec().Encode(&bytes.Buffer{}, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json encode")
}

func TestLZ4Codec_Compresses(t *testing.T) {
	t.Parallel()

	big := testState{Name: strings.Repeat("much wow ", 500)}

	var plain, packed bytes.Buffer

	require.NoError(t, NewJSONCodec().Encode(&plain, big))
	require.NoError(t, NewLZ4Codec(NewJSONCodec()).Encode(&packed, big))
	assert.Less(t, packed.Len(), plain.Len())
}

func TestLZ4Codec_DecodeGarbage(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewLZ4Codec(NewJSONCodec()).Decode(strings.NewReader("plain text"), &decoded)
	require.Error(t, err)
}

func TestCodecFor(t *testing.T) {
	t.Parallel()

	for name, ext := range map[string]string{
		CodecJSON:    ".json",
		"":           ".json",
		CodecYAML:    ".yaml",
		CodecArchive: ".json.lz4",
	} {
		codec, err := CodecFor(name)
		require.NoError(t, err)
		assert.Equal(t, ext, codec.Extension(), name)
	}

	_, err := CodecFor("gob")
	require.ErrorIs(t, err, ErrUnknownCodec)
}

func TestSaveLoadState(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")

	path, err := SaveState(dir, "state", NewYAMLCodec(), sampleState())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.yaml"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be renamed away")

	var loaded testState

	require.NoError(t, LoadState(dir, "state", NewYAMLCodec(), &loaded))
	assert.Equal(t, sampleState(), loaded)
}

func TestSaveState_EncodeErrorLeavesNoFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := SaveState(dir, "bad", NewJSONCodec(), make(chan int))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadState_Missing(t *testing.T) {
	t.Parallel()

	var loaded testState

	err := LoadState(t.TempDir(), "absent", NewJSONCodec(), &loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open state file")
}
