package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	cases := map[string]string{
		"hello":                          "hello",
		"  spaced  ":                     "spaced",
		"<b>bold</b> text":               "bold text",
		"<script>alert(1)</script>hi":    "hi",
		"Tom & Jerry":                    "Tom & Jerry",
		"&lt;img src=x onerror=1&gt;ok":  "ok",
		"привет 👋":                       "привет 👋",
	}
	for in, want := range cases {
		assert.Equal(t, want, Text(in), "input %q", in)
	}
}

func TestOptionalText(t *testing.T) {
	assert.Nil(t, OptionalText(nil))

	in := "<i>bio</i>"
	out := OptionalText(&in)
	if assert.NotNil(t, out) {
		assert.Equal(t, "bio", *out)
	}
}
