package compression

import (
	"bufio"
	"io"
)

// ByteRun is a run of one byte value.
type ByteRun struct {
	// Byte is the value repeated in this run.
	Byte byte
	// RunLength is the number of times Byte occurs in the run, not the number
	// of times it's repeated. It's at least 1 for a valid run.
	RunLength int
}

// InvalidRLERun is returned by [RunGrouper.NextRun] when there's no run to
// return, either because the input is exhausted or because reading failed.
var InvalidRLERun = ByteRun{}

// RunGrouper splits a byte stream into runs of identical bytes.
type RunGrouper struct {
	source *bufio.Reader
}

func NewRunGrouper(input io.Reader) *RunGrouper {
	return &RunGrouper{source: bufio.NewReader(input)}
}

// NextRun returns the next run in the stream. Once the input is exhausted it
// returns [InvalidRLERun] and io.EOF.
func (grouper *RunGrouper) NextRun() (ByteRun, error) {
	first, err := grouper.source.ReadByte()
	if err != nil {
		return InvalidRLERun, err
	}

	run := ByteRun{Byte: first, RunLength: 1}
	for {
		next, err := grouper.source.ReadByte()
		if err == io.EOF {
			return run, nil
		} else if err != nil {
			return InvalidRLERun, err
		}

		if next != first {
			grouper.source.UnreadByte()
			return run, nil
		}
		run.RunLength++
	}
}
