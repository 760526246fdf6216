package analysis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
)

// MaxImageBytes bounds the size of a captured image.
const MaxImageBytes = 8 << 20

// ErrUnsupportedImage is returned for files that are not JPEG or PNG.
var ErrUnsupportedImage = errors.New("image must be a JPEG or PNG")

// EncodeImageFile reads an image from disk and returns it as a data URL.
func EncodeImageFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat image: %w", err)
	}
	if info.Size() > MaxImageBytes {
		return "", fmt.Errorf("image %s is larger than %d bytes", path, MaxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return EncodeImage(data)
}

// EncodeImage returns data as a data URL after sniffing its type.
func EncodeImage(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/jpeg", "image/png":
	default:
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
