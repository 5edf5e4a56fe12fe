// Package brotli implements the BROTLI parquet compression codec.
package brotli

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/parquet-go/parquet-decoding/compress"
	"github.com/parquet-go/parquet-decoding/format"
)

type Codec struct {
	r compress.Decompressor
}

func (c *Codec) String() string {
	return "BROTLI"
}

func (c *Codec) CompressionCodec() format.CompressionCodec {
	return format.Brotli
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.r.Decode(dst, src, func(r io.Reader) (compress.Reader, error) {
		d := &reader{src: trailer{r: r}}
		d.Reader = brotli.NewReader(&d.src)
		return d, nil
	})
}

// errExcessiveInput is the error returned by brotli.Reader when input remains
// after the end of the stream.
var errExcessiveInput = func() error {
	var b bytes.Buffer
	w := brotli.NewWriter(&b)
	w.Close()
	b.WriteByte(0)
	_, err := io.ReadAll(brotli.NewReader(&b))
	return err
}()

// reader adapts brotli.Reader, which has no Close method and reports the end
// of its input with io.EOF whether or not the stream was complete.
//
// The input is followed by one extra byte. A complete stream leaves it unread,
// which brotli.Reader reports as excessive input, while a truncated stream
// either consumes it or fails to decode it.
type reader struct {
	*brotli.Reader
	src trailer
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	switch {
	case err == errExcessiveInput && r.src.sent:
		err = io.EOF
	case err == io.EOF:
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (r *reader) Reset(src io.Reader) error {
	r.src = trailer{r: src}
	return r.Reader.Reset(&r.src)
}

func (r *reader) Close() error { return nil }

// trailer reads r, followed by a single zero byte.
type trailer struct {
	r    io.Reader
	sent bool
}

func (t *trailer) Read(p []byte) (int, error) {
	if t.sent {
		return 0, io.EOF
	}
	n, err := t.r.Read(p)
	if n == 0 && err == io.EOF && len(p) > 0 {
		p[0] = 0
		t.sent = true
		return 1, nil
	}
	return n, err
}
