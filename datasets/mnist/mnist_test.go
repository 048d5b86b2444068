package mnist

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/digits/datasets"
)

func idxImages(n int) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, []uint32{imagesMagic, uint32(n), ImgSize, ImgSize})
	for i := 0; i < n; i++ {
		var img Image
		for j := range img {
			img[j] = byte(i + j)
		}
		b.Write(img[:])
	}
	return b.Bytes()
}

func idxLabels(n int) []byte {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, []uint32{labelsMagic, uint32(n)})
	for i := 0; i < n; i++ {
		b.WriteByte(byte(i % Classes))
	}
	return b.Bytes()
}

func writeGzip(t *testing.T, name string, data []byte) {
	f, err := os.Create(name)
	require.NoError(t, err)
	w := gzip.NewWriter(f)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func fixture(t *testing.T, train, test int) string {
	dir := t.TempDir()
	writeGzip(t, filepath.Join(dir, trainSetImg), idxImages(train))
	writeGzip(t, filepath.Join(dir, trainSetVal), idxLabels(train))
	writeGzip(t, filepath.Join(dir, inferSetImg), idxImages(test))
	writeGzip(t, filepath.Join(dir, inferSetVal), idxLabels(test))
	return dir
}

func TestLoader_Load(t *testing.T) {
	dir := fixture(t, 12, 5)
	train, test, err := Loader{Dirs: []string{t.TempDir(), dir}}.Load()
	require.NoError(t, err)
	require.Equal(t, 12, train.Len())
	require.Equal(t, 5, test.Len())

	it, err := train.Get(11)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), it.Target)
	assert.Equal(t, byte(11), it.Input[0])
	assert.Equal(t, byte(12), it.Input[1])

	_, err = test.Get(5)
	assert.True(t, errors.Is(err, datasets.ErrOutOfBounds))
}

func TestLoader_Missing(t *testing.T) {
	_, err := Loader{Dirs: []string{t.TempDir()}}.Split(true)
	assert.Error(t, err)
}

func TestLoader_VerifyRejectsUnknownContent(t *testing.T) {
	dir := fixture(t, 2, 2)
	_, err := Loader{Dirs: []string{dir}, Verify: true}.Split(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect")
}

func TestReadImages_BadHeader(t *testing.T) {
	data := idxLabels(3)
	_, err := ReadImages(bytes.NewReader(data))
	assert.Error(t, err)

	truncated := idxImages(2)
	_, err = ReadImages(bytes.NewReader(truncated[:len(truncated)-1]))
	assert.Error(t, err)
}

func TestReadLabels_OutOfRange(t *testing.T) {
	data := idxLabels(3)
	data[len(data)-1] = 10
	_, err := ReadLabels(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestTensors(t *testing.T) {
	var img Image
	img[0] = 255
	set, err := NewSet([]Image{img}, []uint8{7})
	require.NoError(t, err)

	src := Tensors(set)
	require.Equal(t, 1, src.Len())
	s, err := src.Get(0)
	require.NoError(t, err)
	require.Len(t, s.Input, ImgSize*ImgSize)
	assert.Equal(t, 7, s.Target)
	assert.InDelta(t, (1-Mean)/Std, s.Input[0], 1e-12)
	assert.InDelta(t, -Mean/Std, s.Input[1], 1e-12)

	// reading twice does not normalize twice
	again, err := src.Get(0)
	require.NoError(t, err)
	assert.Equal(t, s.Input, again.Input)
}

func TestNewSet_Mismatch(t *testing.T) {
	_, err := NewSet(make([]Image, 2), make([]uint8, 1))
	assert.Error(t, err)
}
