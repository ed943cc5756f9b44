package wavcapture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := Create(path, 44100, 2)
	require.NoError(t, err)

	require.NoError(t, rec.Write([]float32{0, 0, 0.5, -0.5}))
	require.NoError(t, rec.Write([]float32{2, -2}))
	require.NoError(t, rec.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(44100), dec.SampleRate)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0x3fff, -0x3fff, 0x7fff, -0x7fff}, buf.Data)
}

func TestCreateFailsOnMissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.wav"), 44100, 2)
	assert.Error(t, err)
}
