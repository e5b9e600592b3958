package proto

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11
	HTTP2
)

// HTTP11Token is the only protocol token the server accepts and the one every
// response is sent with.
const HTTP11Token = "HTTP/1.1"

func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return HTTP11Token
	case HTTP2:
		return "HTTP/2"
	default:
		return ""
	}
}

// FromString matches the token exactly. No whitespace trimming or case folding
// is applied, so "http/1.1" is Unknown.
func FromString(token string) Proto {
	switch token {
	case "HTTP/1.0":
		return HTTP10
	case HTTP11Token:
		return HTTP11
	case "HTTP/2", "HTTP/2.0":
		return HTTP2
	default:
		return Unknown
	}
}
