package mnist

import (
	"bufio"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/neurlang/digits/datasets"
)

func userHomeDir() string {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return "~"
	}
	return dirname
}

const tmpDirectory = `/tmp/mnist/`

var customDirectory = filepath.Join(userHomeDir(), "go/src/example.com/repo.git/digits/datasets/mnist/")

// DefaultDirs are searched when a Loader has no directories.
var DefaultDirs = []string{tmpDirectory, customDirectory, "../data/MNIST/raw"}

const inferSetImg = "t10k-images-idx3-ubyte.gz"
const inferSetVal = "t10k-labels-idx1-ubyte.gz"
const trainSetImg = "train-images-idx3-ubyte.gz"
const trainSetVal = "train-labels-idx1-ubyte.gz"

var digests = map[string]string{
	inferSetImg: "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	inferSetVal: "f7ae60f92e00ec6debd23a6088c31dbd2371eca3ffa0defaefb259924204aec6",
	trainSetImg: "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
	trainSetVal: "3552534a0a558bbed6aed32b30c495cca23d567ec52cac8be1a0730e8010255c",
}

const imagesMagic = 0x00000803
const labelsMagic = 0x00000801

// ImgSize is the side of a digit image in pixels
const ImgSize = 28

// Classes is the number of digits
const Classes = 10

// Mean and Std are the statistics of the train images scaled to [0, 1].
const (
	Mean = 0.1307
	Std  = 0.3081
)

// Image is one digit, row by row.
type Image [ImgSize * ImgSize]byte

// Item is a digit with its label.
type Item = datasets.Pair[Image, uint8]

// Set is one split of the dataset held in memory.
type Set struct {
	images []Image
	labels []uint8
}

// NewSet pairs images with labels.
func NewSet(images []Image, labels []uint8) (*Set, error) {
	if len(images) != len(labels) {
		return nil, errors.Errorf("mnist: %d images but %d labels", len(images), len(labels))
	}
	return &Set{images: images, labels: labels}, nil
}

func (s *Set) Len() int {
	return len(s.labels)
}

func (s *Set) Get(n int) (Item, error) {
	if n < 0 || n >= len(s.labels) {
		return Item{}, &datasets.BoundsError{Index: n, Len: len(s.labels)}
	}
	return Item{Input: s.images[n], Target: s.labels[n]}, nil
}

// Loader finds and parses the gzip idx files.
type Loader struct {

	// Dirs are searched in order, DefaultDirs when empty.
	Dirs []string

	// Verify rejects files whose SHA-256 differs from the published one.
	Verify bool
}

// Load reads the train and the test split.
func (l Loader) Load() (train, test *Set, err error) {
	if train, err = l.Split(true); err != nil {
		return nil, nil, err
	}
	if test, err = l.Split(false); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

// Split reads the train split, or the test split when train is false, from
// the first directory holding both of its files.
func (l Loader) Split(train bool) (*Set, error) {
	img, val := inferSetImg, inferSetVal
	if train {
		img, val = trainSetImg, trainSetVal
	}
	dirs := l.Dirs
	if len(dirs) == 0 {
		dirs = DefaultDirs
	}
	var lastErr error
	for _, dir := range dirs {
		if !exists(filepath.Join(dir, img)) || !exists(filepath.Join(dir, val)) {
			lastErr = errors.Errorf("mnist: files '%s' and '%s' not found in '%s'", img, val, dir)
			continue
		}
		var images []Image
		var labels []uint8
		err := l.read(filepath.Join(dir, img), func(r io.Reader) (err error) {
			images, err = ReadImages(r)
			return
		})
		if err != nil {
			return nil, err
		}
		err = l.read(filepath.Join(dir, val), func(r io.Reader) (err error) {
			labels, err = ReadLabels(r)
			return
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Str("dir", dir).Bool("train", train).Int("items", len(labels)).Msg("loaded mnist split")
		return NewSet(images, labels)
	}
	return nil, lastErr
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (l Loader) read(name string, parse func(io.Reader) error) error {
	if l.Verify {
		if err := verify(name); err != nil {
			return err
		}
	}
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "mnist: cannot open file '%s'", name)
	}
	defer f.Close()
	gzipReader, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		return errors.Wrapf(err, "mnist: gzip file '%s'", name)
	}
	defer gzipReader.Close()
	return errors.Wrapf(parse(gzipReader), "mnist: parsing file '%s'", name)
}

func verify(name string) error {
	want, ok := digests[filepath.Base(name)]
	if !ok {
		return errors.Errorf("mnist: no known digest for file '%s'", name)
	}
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrapf(err, "mnist: cannot open file to hash '%s'", name)
	}
	defer f.Close()
	h := sha256.New()
	if _, err = io.Copy(h, f); err != nil {
		return errors.Wrapf(err, "mnist: cannot hash file '%s'", name)
	}
	if got := fmt.Sprintf("%x", h.Sum(nil)); got != want {
		return errors.Errorf("mnist: file hash for file '%s' is incorrect", name)
	}
	return nil
}

func readHeader(r io.Reader, magic uint32, dims int) ([]uint32, error) {
	var header = make([]uint32, 1+dims)
	if err := binary.Read(r, binary.BigEndian, header); err != nil {
		return nil, errors.Wrap(err, "reading idx header")
	}
	if header[0] != magic {
		return nil, errors.Errorf("bad idx magic %#08x, want %#08x", header[0], magic)
	}
	return header[1:], nil
}

// ReadImages parses an uncompressed idx3 image file.
func ReadImages(r io.Reader) ([]Image, error) {
	dims, err := readHeader(r, imagesMagic, 3)
	if err != nil {
		return nil, err
	}
	if dims[1] != ImgSize || dims[2] != ImgSize {
		return nil, errors.Errorf("images are %dx%d, want %dx%d", dims[1], dims[2], ImgSize, ImgSize)
	}
	var set = make([]Image, dims[0])
	for i := range set {
		if _, err := io.ReadFull(r, set[i][:]); err != nil {
			return nil, errors.Wrapf(err, "reading image %d of %d", i, len(set))
		}
	}
	return set, nil
}

// ReadLabels parses an uncompressed idx1 label file.
func ReadLabels(r io.Reader) ([]uint8, error) {
	dims, err := readHeader(r, labelsMagic, 1)
	if err != nil {
		return nil, err
	}
	var set = make([]uint8, dims[0])
	if _, err := io.ReadFull(r, set); err != nil {
		return nil, errors.Wrapf(err, "reading %d labels", len(set))
	}
	for i, v := range set {
		if v >= Classes {
			return nil, errors.Errorf("label %d is %d", i, v)
		}
	}
	return set, nil
}

// ToTensor scales the pixels of an item to [0, 1].
func ToTensor(it Item) (datasets.Sample, error) {
	var x = make([]float64, len(it.Input))
	for i, v := range it.Input {
		x[i] = float64(v) / 255
	}
	return datasets.Sample{Input: x, Target: int(it.Target)}, nil
}

// Normalize returns the transform shifting inputs by mean and scaling by 1/std, in place.
func Normalize(mean, std float64) func([]float64) []float64 {
	return func(x []float64) []float64 {
		for i := range x {
			x[i] = (x[i] - mean) / std
		}
		return x
	}
}

// Tensors converts a split to normalized samples, the way the train script feeds them.
func Tensors(s datasets.Source[Item]) datasets.Source[datasets.Sample] {
	return datasets.NewTransform[[]float64, int](datasets.NewMap[Item, datasets.Sample](s, ToTensor), Normalize(Mean, Std), nil)
}
