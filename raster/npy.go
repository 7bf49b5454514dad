package raster

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrBadHeader        = errors.New("raster: malformed npy header")
	ErrUnsupportedDType = errors.New("raster: unsupported npy dtype")
)

const npyMagic = "\x93NUMPY"

var (
	descrRegex   = regexp.MustCompile(`'descr'\s*:\s*'([^']+)'`)
	fortranRegex = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapeRegex   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// Limits applied while decoding untrusted headers.
const (
	maxHeaderLen = 1 << 16
	maxElements  = 1 << 28
)

type npyHeader struct {
	descr                   string
	height, width, channels int

	// Offset of the pixel data from the start of the stream.
	dataOffset int64
}

func (h *npyHeader) elements() int {
	return h.height * h.width * h.channels
}

func (h *npyHeader) elementSize() int64 {
	if h.descr == "<f8" {
		return 8
	}
	return 4
}

// Read a frame from a .npy file on disk. The file size must match the size
// declared by the header before any pixel storage is allocated.
func ReadNPYFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	r := bufio.NewReader(f)
	hdr, err := readNPYHeader(r)
	if err != nil {
		return nil, err
	}
	if expSize := hdr.dataOffset + int64(hdr.elements())*hdr.elementSize(); info.Size() < expSize {
		return nil, fmt.Errorf("%w: header declares %d bytes of data; file holds %d", ErrBadHeader, expSize-hdr.dataOffset, info.Size()-hdr.dataOffset)
	}

	return readNPYData(r, hdr)
}

// Decode a C-ordered little-endian float32 or float64 array of shape (H, W)
// or (H, W, C) into a frame. Float64 data is narrowed to float32.
func ReadNPY(r io.Reader) (*Frame, error) {
	hdr, err := readNPYHeader(r)
	if err != nil {
		return nil, err
	}
	return readNPYData(r, hdr)
}

func readNPYHeader(r io.Reader) (*npyHeader, error) {
	var preamble [8]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(preamble[:6]) != npyMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadHeader)
	}

	var (
		headerLen int
		lenSize   int
	)
	switch major := preamble[6]; major {
	case 1:
		var l uint16
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
		headerLen, lenSize = int(l), 2
	case 2, 3:
		var l uint32
		if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
		if l > maxHeaderLen {
			return nil, fmt.Errorf("%w: header length %d exceeds %d", ErrBadHeader, l, maxHeaderLen)
		}
		headerLen, lenSize = int(l), 4
	default:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadHeader, major)
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}

	descr, shape, err := parseNPYHeader(string(header))
	if err != nil {
		return nil, err
	}
	if descr != "<f4" && descr != "<f8" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, descr)
	}

	hdr := &npyHeader{
		descr:      descr,
		dataOffset: int64(len(preamble) + lenSize + headerLen),
	}
	switch len(shape) {
	case 2:
		hdr.height, hdr.width, hdr.channels = shape[0], shape[1], 1
	case 3:
		hdr.height, hdr.width, hdr.channels = shape[0], shape[1], shape[2]
	default:
		return nil, fmt.Errorf("%w: expected 2 or 3 dimensions; got %d", ErrBadHeader, len(shape))
	}

	// Dimensions are checked one at a time so the product cannot overflow
	count := 1
	for _, dim := range []int{hdr.height, hdr.width, hdr.channels} {
		if dim > maxElements/count {
			return nil, fmt.Errorf("%w: shape %v exceeds %d elements", ErrBadHeader, shape, maxElements)
		}
		count *= dim
	}

	return hdr, nil
}

func readNPYData(r io.Reader, hdr *npyHeader) (*Frame, error) {
	frame, err := NewFrame(hdr.width, hdr.height, hdr.channels)
	if err != nil {
		return nil, err
	}

	switch hdr.descr {
	case "<f4":
		err = binary.Read(r, binary.LittleEndian, frame.Pix)
	case "<f8":
		buf := make([]float64, len(frame.Pix))
		if err = binary.Read(r, binary.LittleEndian, buf); err == nil {
			for i, v := range buf {
				frame.Pix[i] = float32(v)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("raster: could not read %s pixel data: %w", frame.dims(), err)
	}

	return frame, nil
}

func parseNPYHeader(header string) (string, []int, error) {
	m := descrRegex.FindStringSubmatch(header)
	if m == nil {
		return "", nil, fmt.Errorf("%w: missing descr", ErrBadHeader)
	}
	descr := m[1]

	m = fortranRegex.FindStringSubmatch(header)
	if m == nil {
		return "", nil, fmt.Errorf("%w: missing fortran_order", ErrBadHeader)
	}
	if m[1] == "True" {
		return "", nil, fmt.Errorf("%w: fortran ordered arrays are not supported", ErrBadHeader)
	}

	m = shapeRegex.FindStringSubmatch(header)
	if m == nil {
		return "", nil, fmt.Errorf("%w: missing shape", ErrBadHeader)
	}

	var shape []int
	for _, tok := range strings.Split(m[1], ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		dim, err := strconv.Atoi(tok)
		if err != nil || dim <= 0 {
			return "", nil, fmt.Errorf("%w: bad dimension %q", ErrBadHeader, tok)
		}
		shape = append(shape, dim)
	}

	return descr, shape, nil
}

// Encode the frame as a version 1.0 .npy array of shape (H, W, C) with
// little-endian float32 elements.
func WriteNPY(w io.Writer, f *Frame) error {
	dict := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d, %d), }", f.Height, f.Width, f.Channels)

	// Pad the header with spaces so that the data section is 64-byte aligned.
	prefixLen := len(npyMagic) + 2 + 2
	padding := 64 - (prefixLen+len(dict)+1)%64
	if padding == 64 {
		padding = 0
	}
	header := dict + strings.Repeat(" ", padding) + "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("%w: header too long", ErrBadHeader)
	}

	var buf bytes.Buffer
	buf.WriteString(npyMagic)
	buf.Write([]byte{1, 0})
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	return binary.Write(w, binary.LittleEndian, f.Pix)
}

// Write the frame to a .npy file on disk.
func WriteNPYFile(path string, f *Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(out)
	if err = WriteNPY(bw, f); err == nil {
		err = bw.Flush()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}
