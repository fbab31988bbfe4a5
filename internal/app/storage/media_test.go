package storage

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBase64PayloadDataURL(t *testing.T) {
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("pngbytes"))

	data, mime, err := DecodeBase64Payload(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("pngbytes"), data)
	assert.Equal(t, "image/png", mime)
}

func TestDecodeBase64PayloadBareString(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, mime, err := DecodeBase64Payload("  " + raw + " ")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "", mime)
}

func TestDecodeBase64PayloadRejectsGarbage(t *testing.T) {
	_, _, err := DecodeBase64Payload("!!not-base64!!")
	assert.Error(t, err)

	_, _, err = DecodeBase64Payload("   ")
	assert.Error(t, err)
}

func TestResolveExtension(t *testing.T) {
	assert.Equal(t, "png", ResolveExtension(KindImage, "image/png", ""))
	assert.Equal(t, "webp", ResolveExtension(KindImage, "", "pic.webp"))
	assert.Equal(t, "jpg", ResolveExtension(KindImage, "image/jpeg", "photo"))

	assert.Equal(t, "webm", ResolveExtension(KindVideo, "video/webm", ""))
	assert.Equal(t, "mov", ResolveExtension(KindVideo, "video/quicktime", ""))
	assert.Equal(t, "mp4", ResolveExtension(KindVideo, "", "clip"))

	assert.Equal(t, "ogg", ResolveExtension(KindVoice, "audio/ogg", ""))
	assert.Equal(t, "ogg", ResolveExtension(KindVoice, "", "note.oga"))
	assert.Equal(t, "m4a", ResolveExtension(KindVoice, "", "note.m4a"))
	assert.Equal(t, "mp3", ResolveExtension(KindVoice, "", "note"))
}

func TestObjectKeyFromURL(t *testing.T) {
	base := "https://cdn.example.com/bekgram"

	key, ok := ObjectKeyFromURL(base, base+"/chat/abc/image-1.png")
	require.True(t, ok)
	assert.Equal(t, "chat/abc/image-1.png", key)

	key, ok = ObjectKeyFromURL(base+"/", base+"/chat/abc/voice-2.ogg")
	require.True(t, ok)
	assert.Equal(t, "chat/abc/voice-2.ogg", key)

	for name, url := range map[string]string{
		"foreign host":   "https://elsewhere.example.com/chat/abc/image-1.png",
		"base only":      base,
		"base and slash": base + "/",
		"empty":          "",
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := ObjectKeyFromURL(base, url)
			assert.False(t, ok)
		})
	}

	_, ok = ObjectKeyFromURL("", "https://cdn.example.com/bekgram/chat/abc/image-1.png")
	assert.False(t, ok)
}

func TestValidKind(t *testing.T) {
	assert.True(t, ValidKind(KindImage))
	assert.True(t, ValidKind(KindVideo))
	assert.True(t, ValidKind(KindVoice))
	assert.False(t, ValidKind("sticker"))
	assert.False(t, ValidKind(""))
}
