package compression

import (
	"bytes"
	"io"

	"github.com/dargueta/diskcache/errors"
	"github.com/klauspost/compress/gzip"
)

// CompressImage RLE8-encodes the raw image read from `input` and writes it to
// `output` gzipped at the highest compression level.
func CompressImage(input io.Reader, output io.Writer) error {
	// Images are small enough that the best level costs nothing noticeable.
	gzWriter, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return err
	}

	_, err = EncodeRLE8(input, gzWriter)
	if closeErr := gzWriter.Close(); err == nil && closeErr != nil {
		err = errors.NewFromError(errors.EIO, closeErr)
	}
	return err
}

// DecompressImage expands a gzipped, RLE8-encoded image from `input` into
// `output`. It returns the size of the raw image.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, errors.ErrCorrupted.Wrap(err)
	}
	defer gzReader.Close()
	return DecodeRLE8(gzReader, output)
}

// DecompressImageToBytes is [DecompressImage] returning the raw image as a new
// byte slice.
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	var image bytes.Buffer
	_, err := DecompressImage(input, &image)
	if err != nil {
		return nil, err
	}
	return image.Bytes(), nil
}
