package jsonc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no comments", `{"a":1}`, `{"a":1}`},
		{"line comment", "{\"a\":1} // trailing\n", "{\"a\":1} \n"},
		{"block comment", `{"a": /* inline */ 1}`, `{"a":  1}`},
		{"slash in string", `{"a":"http://x"}`, `{"a":"http://x"}`},
		{"escaped quote in string", `{"a":"say \"hi\""}`, `{"a":"say \"hi\""}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Sanitize([]byte(c.in))
			require.NoError(t, err)
			require.Equal(t, c.want, string(got))
		})
	}
}

func TestSanitizeInvalidUTF8(t *testing.T) {
	_, err := Sanitize([]byte{0xff, 0xfe})
	require.Error(t, err)
}
