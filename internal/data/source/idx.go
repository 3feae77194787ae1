package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

const (
	// ImageMagic is the magic number of an idx image file.
	ImageMagic uint32 = 2051
	// LabelMagic is the magic number of an idx label file.
	LabelMagic uint32 = 2049
	// MaxImageSize bounds the features of a single image.
	MaxImageSize = 1 << 24
)

// ImageHeader is the 16 byte big-endian header of an idx image file.
type ImageHeader struct {
	Magic uint32
	Count uint32
	Rows  uint32
	Cols  uint32
}

// Size returns the number of features of each image.
func (h ImageHeader) Size() int {
	return int(h.Rows) * int(h.Cols)
}

// LabelHeader is the 8 byte big-endian header of an idx label file.
type LabelHeader struct {
	Magic uint32
	Count uint32
}

// ReadIDX reads image and label payloads in the idx binary format and pairs them into records.
func ReadIDX(images io.Reader, labels io.Reader) ([]*data.Record, error) {
	var ih ImageHeader
	if err := binary.Read(images, binary.BigEndian, &ih); err != nil {
		return nil, fmt.Errorf("could not read image header: %w", err)
	}
	if ih.Magic != ImageMagic {
		return nil, fmt.Errorf("image magic %d instead of %d: %w", ih.Magic, ImageMagic, FormatErr)
	}
	if size := ih.Size(); size <= 0 || size > MaxImageSize {
		return nil, fmt.Errorf("image size %dx%d out of range: %w", ih.Rows, ih.Cols, FormatErr)
	}
	var lh LabelHeader
	if err := binary.Read(labels, binary.BigEndian, &lh); err != nil {
		return nil, fmt.Errorf("could not read label header: %w", err)
	}
	if lh.Magic != LabelMagic {
		return nil, fmt.Errorf("label magic %d instead of %d: %w", lh.Magic, LabelMagic, FormatErr)
	}
	if ih.Count != lh.Count {
		return nil, fmt.Errorf("%d images vs %d labels: %w", ih.Count, lh.Count, FormatErr)
	}

	lbl := make([]byte, lh.Count)
	if _, err := io.ReadFull(labels, lbl); err != nil {
		return nil, fmt.Errorf("could not read labels: %w", err)
	}

	records := make([]*data.Record, ih.Count)
	pixels := make([]byte, ih.Size())
	for i := range records {
		if _, err := io.ReadFull(images, pixels); err != nil {
			return nil, fmt.Errorf("could not read image %d: %w", i, err)
		}
		records[i] = data.FromBytes(int(lbl[i]), pixels)
	}
	return records, nil
}

// LoadIDX reads the idx image and label files at the given paths.
func LoadIDX(imagePath, labelPath string) ([]*data.Record, error) {
	images, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("could not open image file '%s': %w", imagePath, err)
	}
	defer images.Close()
	labels, err := os.Open(labelPath)
	if err != nil {
		return nil, fmt.Errorf("could not open label file '%s': %w", labelPath, err)
	}
	defer labels.Close()
	records, err := ReadIDX(bufio.NewReader(images), bufio.NewReader(labels))
	if err != nil {
		return nil, fmt.Errorf("could not load '%s' and '%s': %w", imagePath, labelPath, err)
	}
	log.Info().
		Str("images", imagePath).
		Str("labels", labelPath).
		Int("records", len(records)).
		Msg("loaded idx files")
	return records, nil
}
