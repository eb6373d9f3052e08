// Package compression implements PRS, the LZ77-family codec used for
// quest files, save data, and most other blobs the download session and
// archive readers handle. A PRS stream is a sequence of control bits
// (1 = literal byte follows, 0,1 = long back-reference, 0,0 = short
// back-reference) terminated by a reserved all-zero long-reference header.
// Ported from prs_compress/prs_decompress in
// original_source/Compression.cc.
package compression

import (
	"fmt"

	"github.com/fuzziqer/psocore/internal/psoerr"
)

const (
	maxWindow    = 8192 // maximum back-reference distance
	maxMatchLen  = 255  // longest run a single copy op can encode
	minMatchLen  = 3    // shorter runs are emitted as raw literals
	shortOffMax  = 256  // short-copy offsets fit in one byte: -256..-1
	longTagBytes = 9    // longest run the 2-byte long-copy form can encode
)

// Compress encodes data as a PRS stream using a straightforward greedy
// longest-match search over the 8192-byte window. It does not attempt to
// reproduce the original encoder's match-selection heuristics byte for
// byte; it only guarantees the output is valid PRS decodable by Decompress
// (and by any conformant PRS reader).
func Compress(data []byte) []byte {
	w := new(bitWriter)
	n := len(data)
	for i := 0; i < n; {
		length, offset := findMatch(data, i)
		if length < minMatchLen {
			w.rawByte(data[i])
			i++
			continue
		}
		if -offset <= shortOffMax && length <= 5 {
			w.shortCopy(offset, length)
		} else {
			w.longCopy(offset, length)
		}
		i += length
	}
	w.putBit(0)
	w.putBit(1)
	w.putByte(0)
	w.putByte(0)
	return w.out
}

func findMatch(data []byte, pos int) (bestLen, bestOffset int) {
	// The farthest candidate is maxWindow-1 back: a long copy at exactly
	// -maxWindow has an all-zero offset field, which for runs longer than
	// longTagBytes encodes identically to the end-of-stream marker.
	start := pos - (maxWindow - 1)
	if start < 0 {
		start = 0
	}
	limit := len(data) - pos
	if limit > maxMatchLen {
		limit = maxMatchLen
	}
	for j := pos - 1; j >= start; j-- {
		l := 0
		for l < limit && data[j+l] == data[pos+l] {
			l++
		}
		if l > bestLen {
			bestLen = l
			bestOffset = j - pos
			if l >= maxMatchLen {
				break
			}
		}
	}
	return bestLen, bestOffset
}

// Decompress inflates a PRS stream, returning an error wrapped in
// psoerr.KindCodec if the stream is truncated, malformed, or would exceed
// maxSize bytes.
func Decompress(data []byte, maxSize int) ([]byte, error) {
	out := make([]byte, 0, initialCap(maxSize))
	r := &bitReader{data: data}

	for {
		bit, ok := r.bit()
		if !ok {
			return nil, psoerr.New(psoerr.KindCodec, "decompress: read control bit", errUnderflow)
		}
		if bit == 1 {
			b, ok := r.byte()
			if !ok {
				return nil, psoerr.New(psoerr.KindCodec, "decompress: read literal byte", errUnderflow)
			}
			if len(out) >= maxSize {
				return nil, psoerr.New(psoerr.KindCodec, "decompress: literal byte", errTooLarge)
			}
			out = append(out, b)
			continue
		}

		route, ok := r.bit()
		if !ok {
			return nil, psoerr.New(psoerr.KindCodec, "decompress: read route bit", errUnderflow)
		}
		if route == 1 {
			offset, length, end, err := r.longCopyFields()
			if err != nil {
				return nil, err
			}
			if end {
				break
			}
			if err := copyBack(&out, offset, length, maxSize); err != nil {
				return nil, err
			}
			continue
		}

		offset, length, err := r.shortCopyFields()
		if err != nil {
			return nil, err
		}
		if err := copyBack(&out, offset, length, maxSize); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecompressSize computes the size a PRS stream would inflate to without
// materializing the output, for preflighting downloads against a
// declared size (spec.md §4.3).
func DecompressSize(data []byte, maxSize int) (int, error) {
	r := &bitReader{data: data}
	size := 0

	for {
		bit, ok := r.bit()
		if !ok {
			return 0, psoerr.New(psoerr.KindCodec, "decompress-size: read control bit", errUnderflow)
		}
		if bit == 1 {
			if _, ok := r.byte(); !ok {
				return 0, psoerr.New(psoerr.KindCodec, "decompress-size: read literal byte", errUnderflow)
			}
			size++
			if size > maxSize {
				return 0, psoerr.New(psoerr.KindCodec, "decompress-size: literal byte", errTooLarge)
			}
			continue
		}

		route, ok := r.bit()
		if !ok {
			return 0, psoerr.New(psoerr.KindCodec, "decompress-size: read route bit", errUnderflow)
		}
		var length int
		if route == 1 {
			_, l, end, err := r.longCopyFields()
			if err != nil {
				return 0, err
			}
			if end {
				break
			}
			length = l
		} else {
			_, l, err := r.shortCopyFields()
			if err != nil {
				return 0, err
			}
			length = l
		}
		size += length
		if size > maxSize {
			return 0, psoerr.New(psoerr.KindCodec, "decompress-size: back-reference", errTooLarge)
		}
	}
	return size, nil
}

func copyBack(out *[]byte, offset, length, maxSize int) error {
	for k := 0; k < length; k++ {
		src := len(*out) + offset
		if src < 0 {
			return psoerr.New(psoerr.KindCodec, "decompress: back-reference", errBadOffset)
		}
		if len(*out) >= maxSize {
			return psoerr.New(psoerr.KindCodec, "decompress: back-reference", errTooLarge)
		}
		*out = append(*out, (*out)[src])
	}
	return nil
}

func initialCap(maxSize int) int {
	if maxSize > 0 && maxSize < 1<<20 {
		return maxSize
	}
	return 256
}

var (
	errUnderflow = fmt.Errorf("truncated PRS stream")
	errTooLarge  = fmt.Errorf("decompressed output exceeds declared maximum size")
	errBadOffset = fmt.Errorf("underflow: back-reference points before start of output")
)
