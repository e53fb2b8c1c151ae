package compression_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dargueta/diskcache/errors"
	c "github.com/dargueta/diskcache/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rle8TestCase struct {
	Name    string
	Raw     []byte
	Encoded []byte
}

var rle8TestCases = []rle8TestCase{
	{"empty", []byte{}, []byte{}},
	{"pair only", []byte{4, 4}, []byte{4, 4, 0}},
	{"no runs", []byte{0, 1, 2, 3, 4}, []byte{0, 1, 2, 3, 4}},
	{"pair at end", []byte{6, 1, 3, 0, 0}, []byte{6, 1, 3, 0, 0, 0}},
	{"three at end", []byte{6, 1, 0, 0, 0}, []byte{6, 1, 0, 0, 1}},
	{"short run", []byte{9, 5, 5, 5, 5, 5, 3, 7}, []byte{9, 5, 5, 3, 3, 7}},
	{
		"adjacent runs",
		[]byte{9, 5, 5, 5, 5, 5, 5, 3, 3, 3, 3, 7, 2, 6},
		[]byte{9, 5, 5, 4, 3, 3, 2, 7, 2, 6},
	},
	{
		"long run",
		bytes.Repeat([]byte{5}, 1024),
		[]byte{5, 5, 255, 5, 5, 255, 5, 5, 255, 5, 5, 251},
	},
	{"257", bytes.Repeat([]byte{8}, 257), []byte{8, 8, 255}},
	{"258", bytes.Repeat([]byte{8}, 258), []byte{8, 8, 255, 8}},
	{"259", bytes.Repeat([]byte{8}, 259), []byte{8, 8, 255, 8, 8, 0}},
}

func TestEncodeRLE8__Basic(t *testing.T) {
	for _, test := range rle8TestCases {
		t.Run(test.Name, func(t *testing.T) {
			var encoded bytes.Buffer
			n, err := c.EncodeRLE8(bytes.NewReader(test.Raw), &encoded)
			require.NoError(t, err)
			assert.EqualValues(t, len(test.Encoded), n, "wrong byte count returned")
			assert.Equal(t, test.Encoded, encoded.Bytes())
		})
	}
}

func TestDecodeRLE8__Basic(t *testing.T) {
	for _, test := range rle8TestCases {
		t.Run(test.Name, func(t *testing.T) {
			decoded := make([]byte, len(test.Raw))
			n, err := c.DecodeRLE8(bytes.NewReader(test.Encoded), bytewriter.New(decoded))
			require.NoError(t, err)
			assert.EqualValues(t, len(test.Raw), n, "wrong byte count returned")
			assert.Equal(t, test.Raw, decoded)
		})
	}
}

func TestRLE8RoundTrip(t *testing.T) {
	random := make([]byte, 1852)
	_, err := rand.Read(random)
	require.NoError(t, err)

	inputs := map[string][]byte{
		"random":       random,
		"nulls":        make([]byte, 571),
		"non-null run": bytes.Repeat([]byte{182}, 934),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var encoded bytes.Buffer
			_, err := c.EncodeRLE8(bytes.NewReader(raw), &encoded)
			require.NoError(t, err)
			t.Logf("encoded %d to %d", len(raw), encoded.Len())

			var decoded bytes.Buffer
			n, err := c.DecodeRLE8(&encoded, &decoded)
			require.NoError(t, err)
			assert.EqualValues(t, len(raw), n)
			assert.Equal(t, raw, decoded.Bytes())
		})
	}
}

func TestDecodeRLE8__MissingRepeatCount(t *testing.T) {
	var decoded bytes.Buffer
	_, err := c.DecodeRLE8(bytes.NewReader([]byte{9, 1, 4, 4}), &decoded)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.ErrorIs(t, err, errors.ErrCorrupted)
}
