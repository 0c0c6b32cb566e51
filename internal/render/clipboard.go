package render

import "github.com/atotto/clipboard"

// Clipboard is a best-effort system clipboard writer.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes through to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
