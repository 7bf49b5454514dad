package raster

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRampFrame(t *testing.T, w, h, c int) *Frame {
	t.Helper()
	f, err := NewFrame(w, h, c)
	require.NoError(t, err)
	for i := range f.Pix {
		f.Pix[i] = float32(i) - float32(len(f.Pix))/2
	}
	return f
}

func TestSliceChannels(t *testing.T) {
	f := makeRampFrame(t, 2, 2, MinChannels)

	depth, err := f.Slice(Depth)
	require.NoError(t, err)
	require.Equal(t, 1, depth.Channels)

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			assert.Equal(t, f.At(x, y, 6), depth.At(x, y, 0))
		}
	}

	pos, err := f.Slice(Position)
	require.NoError(t, err)
	assert.Equal(t, 3, pos.Channels)
	assert.Equal(t, f.At(1, 1, 12), pos.At(1, 1, 2))
}

func TestSliceOutOfRange(t *testing.T) {
	f := makeRampFrame(t, 1, 1, 6)

	_, err := f.Slice(Position)
	assert.ErrorIs(t, err, ErrChannelRange)

	_, err = f.Slice(ChannelRange{"empty", 2, 2})
	assert.ErrorIs(t, err, ErrChannelRange)
}

func TestElementWiseOps(t *testing.T) {
	a := &Frame{Width: 2, Height: 1, Channels: 2, Pix: []float32{-4, 2, 0, -8}}
	b := &Frame{Width: 2, Height: 1, Channels: 2, Pix: []float32{1, 1, 1, 1}}

	if diff := cmp.Diff([]float32{4, 2, 0, 8}, a.Abs().Pix); diff != "" {
		t.Fatalf("abs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{-2, 1, 0, -4}, a.Scale(0.5).Pix); diff != "" {
		t.Fatalf("scale mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]float32{-0.08, 0.04, 0, -0.16}, a.Div(50).Pix); diff != "" {
		t.Fatalf("div mismatch (-want +got):\n%s", diff)
	}

	d, err := a.Sub(b)
	require.NoError(t, err)
	if diff := cmp.Diff([]float32{-5, 1, -1, -9}, d.Pix); diff != "" {
		t.Fatalf("sub mismatch (-want +got):\n%s", diff)
	}

	// Operations never mutate their receiver
	assert.Equal(t, []float32{-4, 2, 0, -8}, a.Pix)

	_, err = a.Sub(&Frame{Width: 1, Height: 1, Channels: 2, Pix: []float32{0, 0}})
	assert.ErrorIs(t, err, ErrDimsMismatch)
}

func TestNewFrameInvalid(t *testing.T) {
	_, err := NewFrame(0, 10, 3)
	assert.ErrorIs(t, err, ErrInvalidLayout)
}

func TestNPYRoundTrip(t *testing.T) {
	f := makeRampFrame(t, 5, 3, MinChannels)

	var buf bytes.Buffer
	require.NoError(t, WriteNPY(&buf, f))
	assert.Equal(t, 63, bytes.IndexByte(buf.Bytes(), '\n')%64, "data section must be 64-byte aligned")

	got, err := ReadNPY(&buf)
	require.NoError(t, err)
	assert.True(t, got.SameDims(f))
	if diff := cmp.Diff(f.Pix, got.Pix); diff != "" {
		t.Fatalf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestNPYFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.npy")
	f := makeRampFrame(t, 4, 2, 1)

	require.NoError(t, WriteNPYFile(path, f))
	got, err := ReadNPYFile(path)
	require.NoError(t, err)
	assert.Equal(t, f.Pix, got.Pix)
}

func TestNPYHeaderErrors(t *testing.T) {
	type spec struct {
		header string
		expErr error
	}
	specs := []spec{
		{"{'descr': '<i4', 'fortran_order': False, 'shape': (1, 1, 1), }", ErrUnsupportedDType},
		{"{'descr': '<f4', 'fortran_order': True, 'shape': (1, 1, 1), }", ErrBadHeader},
		{"{'descr': '<f4', 'fortran_order': False, 'shape': (4,), }", ErrBadHeader},
		{"{'fortran_order': False, 'shape': (1, 1), }", ErrBadHeader},
	}

	for index, s := range specs {
		var buf bytes.Buffer
		buf.WriteString(npyMagic)
		buf.Write([]byte{1, 0, byte(len(s.header)), 0})
		buf.WriteString(s.header)
		buf.Write(make([]byte, 64))

		_, err := ReadNPY(&buf)
		if !assert.ErrorIs(t, err, s.expErr, "spec %d", index) {
			t.FailNow()
		}
	}

	_, err := ReadNPY(bytes.NewReader([]byte("not an npy file")))
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestNPYFloat64(t *testing.T) {
	header := "{'descr': '<f8', 'fortran_order': False, 'shape': (1, 2), }"
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0, byte(len(header)), 0})
	buf.WriteString(header)
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}) // 1.0
	buf.Write([]byte{0, 0, 0, 0, 0, 0, 0, 0xc0})    // -2.0

	f, err := ReadNPY(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Channels)
	assert.Equal(t, []float32{1, -2}, f.Pix)
}

func TestNPYOversizedInput(t *testing.T) {
	// A version 2 header length far beyond anything numpy writes
	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{2, 0})
	binary.Write(&buf, binary.LittleEndian, uint32(0xfffffff0))
	_, err := ReadNPY(&buf)
	assert.ErrorIs(t, err, ErrBadHeader)

	// A shape whose element count exceeds the decoder limit
	header := "{'descr': '<f4', 'fortran_order': False, 'shape': (100000, 100000, 13), }"
	buf.Reset()
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0, byte(len(header)), 0})
	buf.WriteString(header)
	_, err = ReadNPY(&buf)
	assert.ErrorIs(t, err, ErrBadHeader)

	// A file that is shorter than its header claims
	header = "{'descr': '<f4', 'fortran_order': False, 'shape': (720, 1280, 13), }"
	buf.Reset()
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0, byte(len(header)), 0})
	buf.WriteString(header)
	buf.Write(make([]byte, 16))
	path := filepath.Join(t.TempDir(), "truncated.npy")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	_, err = ReadNPYFile(path)
	assert.ErrorIs(t, err, ErrBadHeader)
}
