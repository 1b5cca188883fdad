package newsletter

import (
	"net/url"
	"strings"
)

// Links builds the public URLs of the newsletter pages.
type Links struct {
	siteURL  string
	basePath string
}

func NewLinks(siteURL, basePath string) *Links {
	basePath = strings.TrimRight(basePath, "/")
	return &Links{siteURL: strings.TrimRight(siteURL, "/"), basePath: basePath}
}

// FormPath is the submission form, relative to the site root.
func (l *Links) FormPath() string {
	if l.basePath == "" {
		return "/"
	}
	return l.basePath
}

func (l *Links) ConfirmPath(token string) string {
	return l.basePath + "/subscribe/" + url.PathEscape(token)
}

func (l *Links) ResubscribePath(token string) string {
	return l.basePath + "/resubscribe/" + url.PathEscape(token)
}

func (l *Links) ConfirmURL(token string) string { return l.siteURL + l.ConfirmPath(token) }

func (l *Links) ResubscribeURL(token string) string { return l.siteURL + l.ResubscribePath(token) }
