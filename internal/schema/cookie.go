package schema

// Cookie is an opaque cookie identifier, kept exactly as written.
type Cookie string

// ParseCookie wraps s unchanged. It cannot fail, including for "".
func ParseCookie(s string) Cookie {
	return Cookie(s)
}
