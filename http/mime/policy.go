package mime

import (
	"path/filepath"
	"strings"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
)

// Policy describes how a resource of some type is delivered.
type Policy struct {
	// ContentType is the complete Content-Type header value, parameters included.
	ContentType string `mapstructure:"content_type" json:"content_type" validate:"required"`
	// CacheAge is the Cache-Control max-age, in seconds.
	CacheAge uint32 `mapstructure:"cache_age" json:"cache_age"`
	// Compressible marks resources worth compressing if the client supports it.
	Compressible bool `mapstructure:"compressible" json:"compressible"`
}

var (
	// Default is applied to unknown and missing extensions.
	Default = Policy{ContentType: OctetStream, CacheAge: minute}
	// ServerError is used for the internal server error page.
	ServerError = Policy{ContentType: Plain, CacheAge: 0}
)

// Extension maps extensions, without the leading dot, to their policies. Keys are
// case-sensitive: "HTML" falls back to Default.
var Extension = map[string]Policy{
	"html": {WithUTF8(HTML), minute, true},
	"css":  {WithUTF8(CSS), 3 * day, true},
	"js":   {WithUTF8(JS), 3 * day, true},
	"txt":  {WithUTF8(Plain), minute, true},
	"json": {WithUTF8(JSON), hour, true},
	"svg":  {WithUTF8(SVG), 7 * day, true},
	"webp": {WEBP, 3 * day, false},
	"jpg":  {JPEG, 3 * day, false},
	"jpeg": {JPEG, 3 * day, false},
	"ico":  {ICO, 7 * day, false},
	"png":  {PNG, 3 * day, false},
	"otf":  {OTF, 7 * day, true},
	"ttf":  {TTF, 7 * day, true},
	"mp4":  {MP4, day, false},
	"mp3":  {MP3, day, false},
}

// Lookup returns the policy for the extension, given without the leading dot.
func Lookup(ext string) Policy {
	if policy, found := Extension[ext]; found {
		return policy
	}

	return Default
}

// Ext returns the extension of the file name without the leading dot. Dotfiles like
// ".env" are considered having no extension.
func Ext(path string) string {
	base := filepath.Base(path)
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return ""
	}

	return base[dot+1:]
}

// ForPath returns the policy for the file extension of the path.
func ForPath(path string) Policy {
	return Lookup(Ext(path))
}
