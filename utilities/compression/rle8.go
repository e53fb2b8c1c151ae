package compression

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/diskcache/errors"
)

// maxRLE8Repeat is the largest repeat count a group can hold.
const maxRLE8Repeat = 255

// EncodeRLE8 reads `input` until it's exhausted and writes its RLE8 encoding
// to `output`. It returns the number of encoded bytes written.
func EncodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	grouper := NewRunGrouper(input)
	written := int64(0)

	emit := func(chunk ...byte) error {
		n, err := output.Write(chunk)
		written += int64(n)
		return err
	}

	for {
		run, err := grouper.NextRun()
		if err == io.EOF {
			return written, nil
		} else if err != nil {
			return written, errors.NewFromError(errors.EIO, err)
		}

		for run.RunLength >= 2 {
			extra := run.RunLength - 2
			if extra > maxRLE8Repeat {
				extra = maxRLE8Repeat
			}
			if err = emit(run.Byte, run.Byte, byte(extra)); err != nil {
				return written, errors.NewFromError(errors.EIO, err)
			}
			run.RunLength -= extra + 2
		}

		if run.RunLength == 1 {
			if err = emit(run.Byte); err != nil {
				return written, errors.NewFromError(errors.EIO, err)
			}
		}
	}
}

// DecodeRLE8 expands RLE8-encoded data from `input` into `output`, and returns
// the number of decoded bytes written. Input that ends in the middle of a
// group fails with an error wrapping [io.ErrUnexpectedEOF].
func DecodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	written := int64(0)
	previous := -1

	for {
		current, err := source.ReadByte()
		if err == io.EOF {
			return written, nil
		} else if err != nil {
			return written, errors.NewFromError(errors.EIO, err)
		}

		chunk := []byte{current}
		if int(current) == previous {
			extra, err := source.ReadByte()
			if err == io.EOF {
				return written, errors.ErrCorrupted.
					WithMessage(fmt.Sprintf("missing repeat count after two 0x%02x bytes", current)).
					Wrap(io.ErrUnexpectedEOF)
			} else if err != nil {
				return written, errors.NewFromError(errors.EIO, err)
			}

			// The first byte of the pair was already written on its own.
			chunk = bytes.Repeat(chunk, int(extra)+1)
			previous = -1
		} else {
			previous = int(current)
		}

		n, err := output.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, errors.NewFromError(errors.EIO, err)
		}
	}
}
