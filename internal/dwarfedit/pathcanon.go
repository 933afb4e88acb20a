package dwarfedit

// isDirSeparator reports whether b is a path separator. Only '/' is
// recognized; the editor works against POSIX-style paths recorded by the
// compiler regardless of the host building the toolchain.
func isDirSeparator(b byte) bool {
	return b == '/'
}

// canonicalizePath collapses "." and ".." segments and repeated separators
// in s, the way a shell would interpret the path, without producing a
// result longer than a non-empty s (§4.6). A leading "//" (exactly two slashes)
// is preserved as a POSIX namespace escape rather than collapsed to one.
//
// The result never has a trailing separator unless it is the root "/", and
// an empty result becomes ".".
func canonicalizePath(s string) string {
	src := []byte(s)
	dst := make([]byte, 0, len(src))

	i := 0
	if i < len(src) && isDirSeparator(src[i]) {
		dst = append(dst, src[i])
		i++

		if i < len(src) && isDirSeparator(src[i]) && !(i+1 < len(src) && isDirSeparator(src[i+1])) {
			dst = append(dst, src[i])
			i++
		}

		for i < len(src) && isDirSeparator(src[i]) {
			i++
		}
	}

	root := len(dst)

	for i < len(src) {
		switch {
		case src[i] == '.' && (i+1 == len(src) || isDirSeparator(src[i+1])):
			i++
			for i < len(src) && isDirSeparator(src[i]) {
				i++
			}

		case src[i] == '.' && i+1 < len(src) && src[i+1] == '.' &&
			(i+2 == len(src) || isDirSeparator(src[i+2])):
			pre := len(dst) - 1 // includes the slash just written, if any
			for root < pre && isDirSeparator(dst[pre]) {
				pre--
			}

			if root <= pre && !isDirSeparator(dst[pre]) {
				for root < pre && !isDirSeparator(dst[pre]) {
					pre--
				}

				if root < pre {
					pre++
				}

				if pre+3 == len(dst) && dst[pre] == '.' && dst[pre+1] == '.' {
					dst = append(dst, src[i], src[i+1])
					i += 2
				} else {
					dst = dst[:pre]
					i += 2

					for i < len(src) && isDirSeparator(src[i]) {
						i++
					}
				}
			} else {
				dst = append(dst, src[i], src[i+1])
				i += 2
			}

		default:
			for i < len(src) && !isDirSeparator(src[i]) {
				dst = append(dst, src[i])
				i++
			}
		}

		if i < len(src) && isDirSeparator(src[i]) {
			dst = append(dst, src[i])
			i++

			for i < len(src) && isDirSeparator(src[i]) {
				i++
			}
		}
	}

	for root < len(dst) && isDirSeparator(dst[len(dst)-1]) {
		dst = dst[:len(dst)-1]
	}

	if len(dst) == 0 {
		dst = append(dst, '.')
	}

	return string(dst)
}

// hasPathPrefix reports whether str begins with prefix, byte for byte. It
// does not require a following separator: "/usr/include" has prefix
// "/usr/inc", matching the original tool's has_prefix semantics exactly so
// base-dir/dest-dir matching behaves identically.
func hasPathPrefix(str, prefix string) bool {
	if len(str) < len(prefix) {
		return false
	}

	return str[:len(prefix)] == prefix
}
