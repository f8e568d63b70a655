package merge

import "strings"

// UnknownTheme is the theme recorded when a title has no theme part.
const UnknownTheme = "Unknown Transmission"

// Decoder splits a title into event and theme.
type Decoder interface {
	Decode(title string) (event, theme string, err error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(title string) (string, string, error)

func (f DecoderFunc) Decode(title string) (string, string, error) { return f(title) }

// ColonDecoder splits on the first colon and trims both halves. Titles with no
// colon keep the whole title as the event and take UnknownTheme.
type ColonDecoder struct{}

func (ColonDecoder) Decode(title string) (string, string, error) {
	event, theme, found := strings.Cut(title, ":")
	if !found {
		return strings.TrimSpace(title), UnknownTheme, nil
	}
	return strings.TrimSpace(event), strings.TrimSpace(theme), nil
}
