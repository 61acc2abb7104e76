package decoder

import (
	"bufio"
	"io"
	"strings"
)

// TextDecoder handles plain text files. Every non-blank line becomes a span
// in body type; form feeds start a new page.
type TextDecoder struct{}

func (d *TextDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	f := newFlow()
	for scanner.Scan() {
		line := scanner.Text()
		for {
			i := strings.IndexByte(line, '\f')
			if i < 0 {
				break
			}
			f.add(line[:i], style{size: bodySize})
			f.breakPage()
			line = line[i+1:]
		}
		f.add(line, style{size: bodySize})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return f.document(filename), nil
}
