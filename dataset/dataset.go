package dataset

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

const (
	Width      = 28
	Height     = 28
	PixelCount = Width * Height

	// NumLabels is the number of classes, labels are in [0, NumLabels).
	NumLabels = 10

	Black = 0
	White = 255
)

// upper bound of the capacity reserved from the header count
const maxPreallocatedImages = 1 << 16

var (
	ErrTruncated    = errors.New("truncated dataset")
	ErrInvalidCount = errors.New("invalid image count")
	ErrInvalidLabel = errors.New("invalid label")
)

type Image struct {
	Width  int
	Height int
	Pixels []byte
}

func NewImage(pixels []byte) Image {
	return Image{
		Width:  Width,
		Height: Height,
		Pixels: pixels,
	}
}

// Filled returns an image whose pixels all have the value v.
func Filled(v byte) Image {
	pixels := make([]byte, PixelCount)
	for i := range pixels {
		pixels[i] = v
	}
	return NewImage(pixels)
}

// Dataset holds labeled images. Images[i] is labeled by Labels[i].
type Dataset struct {
	Images []Image
	Labels []uint8
}

func New(images []Image, labels []uint8) (*Dataset, error) {
	if len(images) != len(labels) {
		return nil, errors.Newf("%d images but %d labels", len(images), len(labels))
	}
	for i, label := range labels {
		if NumLabels <= label {
			return nil, errors.Wrapf(ErrInvalidLabel, "label %d of image %d", label, i)
		}
		if len(images[i].Pixels) != PixelCount {
			return nil, errors.Newf("image %d has %d pixels", i, len(images[i].Pixels))
		}
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Labels)
}

// Release drops every pixel buffer, then the images and the labels.
// The dataset must not be used afterwards.
func (d *Dataset) Release() {
	if d == nil {
		return
	}
	for i := range d.Images {
		d.Images[i].Pixels = nil
	}
	d.Images = nil
	d.Labels = nil
}

func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	data, err := Read(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return data, nil
}

// Read decodes a little-endian int32 image count followed by that many
// (label, pixels) records.
func Read(r io.Reader) (*Dataset, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, truncated(err, "read image count")
	}
	if count < 0 {
		return nil, errors.Wrapf(ErrInvalidCount, "count %d", count)
	}

	capacity := min(int(count), maxPreallocatedImages)
	images := make([]Image, 0, capacity)
	labels := make([]uint8, 0, capacity)
	for i := 0; i < int(count); i++ {
		var label uint8
		if err := binary.Read(r, binary.LittleEndian, &label); err != nil {
			return nil, truncated(err, "read label of image %d", i)
		}
		if NumLabels <= label {
			return nil, errors.Wrapf(ErrInvalidLabel, "label %d of image %d", label, i)
		}

		pixels := make([]byte, PixelCount)
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, truncated(err, "read pixels of image %d", i)
		}

		images = append(images, NewImage(pixels))
		labels = append(labels, label)
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

func Write(w io.Writer, data *Dataset) error {
	wtr := bufio.NewWriter(w)
	if err := binary.Write(wtr, binary.LittleEndian, int32(data.Len())); err != nil {
		return err
	}
	for i, img := range data.Images {
		if len(img.Pixels) != PixelCount {
			return errors.Newf("image %d has %d pixels", i, len(img.Pixels))
		}
		if err := wtr.WriteByte(data.Labels[i]); err != nil {
			return err
		}
		if _, err := wtr.Write(img.Pixels); err != nil {
			return err
		}
	}

	return wtr.Flush()
}

func truncated(err error, format string, args ...interface{}) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errors.Wrapf(ErrTruncated, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}
