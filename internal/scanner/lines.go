package scanner

import (
	"io"
	"os"
	"unicode/utf8"
)

// CountLines returns the number of lines in the file at path. Lines end in
// "\n", "\r\n" or a lone "\r"; a trailing unterminated line is counted.
// Invalid UTF-8 is ignored: a trailing unterminated line made only of
// undecodable bytes does not count.
// A file that cannot be opened or read counts as 0 lines.
func CountLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer func() { _ = f.Close() }()

	n, err := countLines(f)
	if err != nil {
		return 0
	}
	return n
}

func countLines(r io.Reader) (int, error) {
	buf := make([]byte, 32*1024)
	lines := 0
	partial := false
	prevCR := false
	// tail holds the last bytes of a trailing non-ASCII run until one of
	// them completes a decodable rune.
	var tail []byte

	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch {
			case b == '\n' && prevCR:
				prevCR = false
				tail = tail[:0]
			case b == '\n' || b == '\r':
				lines++
				partial = false
				prevCR = b == '\r'
				tail = tail[:0]
			case b < utf8.RuneSelf:
				prevCR = false
				partial = true
				tail = tail[:0]
			case partial:
			default:
				// Undecodable bytes are dropped, so a run of them between
				// "\r" and "\n" still leaves a single terminator.
				tail = append(tail, b)
				if len(tail) > utf8.UTFMax {
					tail = tail[len(tail)-utf8.UTFMax:]
				}
				if hasRune(tail) {
					prevCR = false
					partial = true
					tail = tail[:0]
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if partial {
		lines++
	}
	return lines, nil
}

// hasRune reports whether b contains at least one valid UTF-8 encoding.
func hasRune(b []byte) bool {
	for len(b) > 0 {
		_, size := utf8.DecodeRune(b)
		if size > 1 {
			return true
		}
		b = b[1:]
	}
	return false
}
