package iso9660

// FilenameMax bounds every name this package builds, including the NUL
// terminator of the on-disk conventions it mirrors.
const FilenameMax = 256

func isSpace(c byte) bool {
	return c <= ' '
}

// MangleName turns a user supplied path into a canonical lookup key. It stops
// at the first whitespace, collapses repeated slashes and strips trailing dots
// and slashes, so "/boot//isolinux/" and "/boot/isolinux" give the same key.
// Input beyond FilenameMax-1 bytes is dropped.
func MangleName(src string) string {
	var buf [FilenameMax]byte
	n := 0

	for i := 0; i < len(src) && n < FilenameMax-1; i++ {
		c := src[i]
		if isSpace(c) {
			break
		}

		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			continue
		}

		buf[n] = c
		n++
	}

	for n > 0 && (buf[n-1] == '.' || buf[n-1] == '/') {
		n--
	}

	return string(buf[:n])
}

// ConvertName converts an on-disk file identifier to its presentation form:
// a trailing ";1" is dropped, any other ';' becomes '.', and trailing dots
// are removed as long as at least two bytes remain.
func ConvertName(raw []byte) string {
	var buf [FilenameMax]byte
	n := 0

	for ; n < len(raw) && n < FilenameMax; n++ {
		c := raw[n]
		if c == 0 {
			break
		}

		if c == ';' && n == len(raw)-2 && raw[n+1] == '1' {
			break
		}

		if c == ';' {
			c = '.'
		}

		buf[n] = c
	}

	for n > 2 && buf[n-1] == '.' {
		n--
	}

	return string(buf[:n])
}

// CompareName reports whether the on-disk identifier raw names the same file
// as name, ignoring ASCII case.
func CompareName(raw []byte, name string) bool {
	converted := ConvertName(raw)

	if len(converted) != len(name) {
		return false
	}

	for i := 0; i < len(name); i++ {
		if converted[i]|0x20 != name[i]|0x20 {
			return false
		}
	}

	return true
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 0x20
		}
	}
	return string(b)
}
