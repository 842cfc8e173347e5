package decode

import (
	"fmt"
	"io"
)

// PGMDecoder reads binary PGM (P5), the common interchange format for
// camera pipelines that dump demosaiced 16-bit grayscale planes.
type PGMDecoder struct{}

// Decode parses the P5 header and sample data. Samples above 255 maxval are
// big-endian 16-bit per the netpbm spec. Bit depth is derived from maxval.
func (PGMDecoder) Decode(r io.Reader) ([]uint16, int, int, int, int, error) {
	br := asByteReader(r)

	magic, err := readToken(br)
	if err != nil {
		return nil, 0, 0, 0, 0, fmt.Errorf("read magic: %w", err)
	}
	if magic != "P5" {
		return nil, 0, 0, 0, 0, fmt.Errorf("not a binary PGM: magic %q", magic)
	}

	width, err := readInt(br)
	if err != nil {
		return nil, 0, 0, 0, 0, fmt.Errorf("read width: %w", err)
	}
	height, err := readInt(br)
	if err != nil {
		return nil, 0, 0, 0, 0, fmt.Errorf("read height: %w", err)
	}
	maxval, err := readInt(br)
	if err != nil {
		return nil, 0, 0, 0, 0, fmt.Errorf("read maxval: %w", err)
	}
	if width <= 0 || height <= 0 {
		return nil, 0, 0, 0, 0, fmt.Errorf("bad dimensions %dx%d", width, height)
	}
	if maxval <= 0 || maxval > 65535 {
		return nil, 0, 0, 0, 0, fmt.Errorf("bad maxval %d", maxval)
	}

	n := width * height
	pixels := make([]uint16, n)
	if maxval < 256 {
		buf := make([]byte, n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, 0, 0, 0, 0, fmt.Errorf("read %d samples: %w", n, err)
		}
		for i, b := range buf {
			pixels[i] = uint16(b)
		}
	} else {
		buf := make([]byte, 2*n)
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, 0, 0, 0, 0, fmt.Errorf("read %d samples: %w", n, err)
		}
		for i := 0; i < n; i++ {
			pixels[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
		}
	}

	return pixels, width, height, bitDepthForMax(maxval), 1, nil
}

// bitDepthForMax returns the smallest depth whose full-scale value covers
// maxval, so a maxval of 4095 reports 12-bit data rather than 16.
func bitDepthForMax(maxval int) int {
	depth := 1
	for (1<<uint(depth))-1 < maxval {
		depth++
	}
	return depth
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return &plainByteReader{r: r}
}

type plainByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (p *plainByteReader) Read(b []byte) (int, error) { return p.r.Read(b) }

func (p *plainByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(p.r, p.buf[:]); err != nil {
		return 0, err
	}
	return p.buf[0], nil
}

// readToken skips whitespace and # comments, then reads one token. The
// token is terminated by a single whitespace byte, which is consumed.
func readToken(br io.ByteReader) (string, error) {
	var tok []byte
	inComment := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && len(tok) > 0 {
				return string(tok), nil
			}
			return "", err
		}
		switch {
		case inComment:
			if b == '\n' {
				inComment = false
			}
		case b == '#' && len(tok) == 0:
			inComment = true
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

func readInt(br io.ByteReader) (int, error) {
	tok, err := readToken(br)
	if err != nil {
		return 0, err
	}
	v := 0
	for _, c := range tok {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("not a number: %q", tok)
		}
		v = v*10 + int(c-'0')
		if v > 1<<30 {
			return 0, fmt.Errorf("number too large: %q", tok)
		}
	}
	if len(tok) == 0 {
		return 0, fmt.Errorf("empty number")
	}
	return v, nil
}
