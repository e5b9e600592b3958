package method

type Method uint8

const (
	Unknown Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	CONNECT
	OPTIONS
	TRACE
	PATCH
)

// Parse recognizes a method token. The comparison is case-sensitive, as method
// tokens are.
func Parse(str string) Method {
	switch len(str) {
	case 3:
		if str == "GET" {
			return GET
		} else if str == "PUT" {
			return PUT
		}
	case 4:
		if str == "POST" {
			return POST
		} else if str == "HEAD" {
			return HEAD
		}
	case 5:
		if str == "PATCH" {
			return PATCH
		} else if str == "TRACE" {
			return TRACE
		}
	case 6:
		if str == "DELETE" {
			return DELETE
		}
	case 7:
		if str == "CONNECT" {
			return CONNECT
		} else if str == "OPTIONS" {
			return OPTIONS
		}
	}

	return Unknown
}

// Allowed reports whether the server serves the method. Only GET and HEAD are.
func (m Method) Allowed() bool {
	return m == GET || m == HEAD
}

// WithBody reports whether a response to the method carries a payload.
func (m Method) WithBody() bool {
	return m != HEAD
}

func (m Method) String() string {
	lut := [...]string{
		Unknown: "UNKNOWN", GET: "GET", HEAD: "HEAD", POST: "POST", PUT: "PUT",
		DELETE: "DELETE", CONNECT: "CONNECT", OPTIONS: "OPTIONS", TRACE: "TRACE", PATCH: "PATCH",
	}
	if int(m) >= len(lut) {
		return lut[Unknown]
	}

	return lut[m]
}
