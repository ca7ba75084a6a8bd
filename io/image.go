package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Image is an object program: the words to load at address 0 onward.
type Image struct {
	Data []int32
}

var _ io.ReaderFrom = (*Image)(nil)
var _ io.WriterTo = (*Image)(nil)

// ReadFrom replaces the image with the words read from r, one per line.
// Blank lines and text after '#' are ignored. Words may be written signed
// or unsigned, in any base strconv.ParseInt accepts.
func (img *Image) ReadFrom(r io.Reader) (n int64, err error) {
	scanner := bufio.NewScanner(r)

	img.Data = img.Data[:0]

	var lineno int
	for scanner.Scan() {
		line := scanner.Text()
		lineno++
		n += int64(len(line)) + 1

		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var value int64
		value, err = strconv.ParseInt(line, 0, 64)
		if err != nil || value < math.MinInt32 || value > math.MaxUint32 {
			err = &ErrImageLine{LineNo: lineno, Err: ErrParseWord(line)}
			return
		}

		img.Data = append(img.Data, int32(uint32(value)))
	}

	err = scanner.Err()
	return
}

// WriteTo writes the image as one signed decimal word per line.
func (img *Image) WriteTo(w io.Writer) (n int64, err error) {
	out := bufio.NewWriter(w)

	for _, word := range img.Data {
		var count int
		count, err = fmt.Fprintf(out, "%d\n", word)
		n += int64(count)
		if err != nil {
			return
		}
	}

	err = out.Flush()
	return
}
