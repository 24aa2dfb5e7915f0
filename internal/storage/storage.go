package storage

import (
	"context"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

type Uploader interface {
	// Upload writes r under objectName and returns the URL clients use to fetch it.
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (url string, err error)
}

// ObjectName builds "<kind>/<userID>/<unix>-<base name>" with the base name
// reduced to a safe character set.
func ObjectName(kind, userID, fileName string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	safe := b.String()
	if safe == "" || safe == "." || safe == "/" {
		safe = "file"
	}
	return path.Join(kind, userID, strconv.FormatInt(now.Unix(), 10)+"-"+safe)
}
