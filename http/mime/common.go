package mime

type MIME = string

const (
	OctetStream MIME = "application/octet-stream"
	Plain       MIME = "text/plain"
	HTML        MIME = "text/html"
	CSS         MIME = "text/css"
	JS          MIME = "text/javascript"
	JSON        MIME = "application/json"
	SVG         MIME = "image/svg+xml"
	WEBP        MIME = "image/webp"
	JPEG        MIME = "image/jpeg"
	ICO         MIME = "image/x-icon"
	PNG         MIME = "image/png"
	OTF         MIME = "font/otf"
	TTF         MIME = "font/ttf"
	MP4         MIME = "video/mp4"
	MP3         MIME = "audio/mp3"
)

// WithUTF8 appends the charset parameter.
func WithUTF8(m MIME) string {
	return m + "; charset=UTF-8"
}
