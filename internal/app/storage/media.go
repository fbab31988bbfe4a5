package storage

import (
	"encoding/base64"
	"strings"
)

// Media kinds accepted by the upload surface.
const (
	KindImage = "image"
	KindVideo = "video"
	KindVoice = "voice"
)

// Upload ceilings in bytes: avatars stay small, chat media may be larger.
const (
	MaxAvatarBytes int64 = 12 << 20 // 12 MB
	MaxMediaBytes  int64 = 25 << 20 // 25 MB
)

// DecodeBase64Payload accepts either a raw base64 string or a data URL
// ("data:image/png;base64,....") and returns the decoded bytes plus the MIME
// type declared by the data URL header, if any.
func DecodeBase64Payload(raw string) (data []byte, mimeType string, err error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, "", base64.CorruptInputError(0)
	}

	if strings.HasPrefix(value, "data:") {
		if comma := strings.Index(value, ","); comma >= 0 {
			header := value[:comma]
			mimeType = strings.ToLower(strings.TrimSpace(
				strings.TrimPrefix(strings.SplitN(header, ";", 2)[0], "data:")))
			value = value[comma+1:]
		}
	}

	data, err = base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, "", err
	}
	return data, mimeType, nil
}

// ResolveExtension picks a file extension for an uploaded object from the
// media kind, the declared MIME type, and the original file name, falling
// back to the most common container of each kind.
func ResolveExtension(kind, mimeType, fileName string) string {
	mime := strings.ToLower(mimeType)
	name := strings.ToLower(fileName)

	has := func(fragment, suffix string) bool {
		return strings.Contains(mime, fragment) || strings.HasSuffix(name, suffix)
	}

	switch kind {
	case KindImage:
		switch {
		case has("png", ".png"):
			return "png"
		case has("webp", ".webp"):
			return "webp"
		case has("gif", ".gif"):
			return "gif"
		}
		return "jpg"

	case KindVideo:
		switch {
		case has("webm", ".webm"):
			return "webm"
		case has("quicktime", ".mov"):
			return "mov"
		}
		return "mp4"

	default: // voice
		switch {
		case has("ogg", ".ogg") || strings.HasSuffix(name, ".oga"):
			return "ogg"
		case has("webm", ".webm"):
			return "webm"
		case has("opus", ".opus"):
			return "opus"
		case has("pcm", ".pcm"):
			return "pcm"
		case has("wav", ".wav"):
			return "wav"
		case has("aac", ".aac"):
			return "aac"
		case has("m4a", ".m4a"):
			return "m4a"
		}
		return "mp3"
	}
}

// ObjectKeyFromURL reverses Upload's URL construction: given the public base
// URL and an object URL under it, it returns the bucket key. URLs outside the
// base (external stickers, legacy hosts) report ok=false.
func ObjectKeyFromURL(publicBaseURL, objectURL string) (key string, ok bool) {
	base := strings.TrimSuffix(strings.TrimSpace(publicBaseURL), "/")
	url := strings.TrimSpace(objectURL)
	if base == "" || !strings.HasPrefix(url, base+"/") {
		return "", false
	}

	key = strings.TrimPrefix(url[len(base)+1:], "/")
	if key == "" {
		return "", false
	}
	return key, true
}

// ValidKind reports whether kind names an uploadable media kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindImage, KindVideo, KindVoice:
		return true
	}
	return false
}
