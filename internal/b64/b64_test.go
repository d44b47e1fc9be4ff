package b64

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	assert.Equal(t, "YWVzLTI1Ni1nY206cHc=", Encode("aes-256-gcm:pw"))
	assert.Equal(t, "", Encode(""))
}

func TestEncodeURL(t *testing.T) {
	// "??>" encodes to "Pz8+" in the standard alphabet.
	assert.Equal(t, "Pz8-", EncodeURL("??>"))
	// "???" encodes to "Pz8/" in the standard alphabet.
	assert.Equal(t, "Pz8_", EncodeURL("???"))
	assert.Equal(t, "cHc", EncodeURL("pw"))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "padded standard", input: "YWVzLTI1Ni1nY206cHc=", want: "aes-256-gcm:pw"},
		{name: "missing padding", input: "cHc", want: "pw"},
		{name: "url safe", input: "Pz8-", want: "??>"},
		{name: "url safe underscore", input: "Pz8_", want: "???"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("!!!!")
	assert.Error(t, err)
}
