package render

import (
	"io"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
)

// Browser opens URLs in the default web browser.
type Browser struct{}

func init() {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

func (Browser) Open(url string) error {
	log.Debug().Str("url", url).Msg("Opening browser")
	return browser.OpenURL(url)
}
