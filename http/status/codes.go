package status

import "strconv"

type (
	Code   uint16
	Status string
)

// Codes the server is able to respond with.
const (
	OK Code = 200 // RFC 9110, 15.3.1

	BadRequest       Code = 400 // RFC 9110, 15.5.1
	NotFound         Code = 404 // RFC 9110, 15.5.5
	MethodNotAllowed Code = 405 // RFC 9110, 15.5.6

	InternalServerError     Code = 500 // RFC 9110, 15.6.1
	HTTPVersionNotSupported Code = 505 // RFC 9110, 15.6.6
)

// KnownCodes lists every code having a dedicated status line.
var KnownCodes = []Code{
	OK, BadRequest, NotFound, MethodNotAllowed, InternalServerError, HTTPVersionNotSupported,
}

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case MethodNotAllowed:
		return "Method Not Allowed"
	case InternalServerError:
		return "Internal Server Error"
	case HTTPVersionNotSupported:
		return "HTTP Version Not Supported"
	default:
		return ""
	}
}

// Line returns the status part of the response line, e.g. "404 Not Found". Unknown
// codes are rendered without a reason phrase.
func Line(code Code) string {
	switch code {
	case OK:
		return "200 OK"
	case BadRequest:
		return "400 Bad Request"
	case NotFound:
		return "404 Not Found"
	case MethodNotAllowed:
		return "405 Method Not Allowed"
	case InternalServerError:
		return "500 Internal Server Error"
	case HTTPVersionNotSupported:
		return "505 HTTP Version Not Supported"
	default:
		return strconv.FormatUint(uint64(code), 10) + " "
	}
}

// IsClientError reports whether the code belongs to the 4xx class.
func (c Code) IsClientError() bool {
	return c >= 400 && c < 500
}

// IsServerError reports whether the code belongs to the 5xx class.
func (c Code) IsServerError() bool {
	return c >= 500 && c < 600
}

func (c Code) String() string {
	return strconv.FormatUint(uint64(c), 10)
}
