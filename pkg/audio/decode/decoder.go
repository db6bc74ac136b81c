// ABOUTME: Decoder interface and file dispatch
// ABOUTME: Picks a codec decoder from the file extension and decodes whole files
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Sendspin/soundboard-go/pkg/audio"
)

// ErrUnsupportedFormat is returned for file extensions with no decoder
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Decoder decodes a complete encoded stream into a float32 clip
type Decoder interface {
	// Decode reads r to the end and returns the clip at its native rate
	Decode(r io.Reader) (*audio.Clip, error)
}

var decoders = map[string]func() Decoder{
	".wav":  NewWAV,
	".wave": NewWAV,
	".mp3":  NewMP3,
	".flac": NewFLAC,
	".ogg":  NewVorbis,
	".oga":  NewVorbis,
	".opus": NewOpus,
}

// ForExtension returns the decoder registered for a file extension
func ForExtension(ext string) (Decoder, error) {
	newDecoder, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(Extensions(), ", "))
	}
	return newDecoder(), nil
}

// Extensions lists the supported file extensions in sorted order
func Extensions() []string {
	exts := make([]string, 0, len(decoders))
	for ext := range decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// File decodes the audio file at path
func File(path string) (*audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec, err := ForExtension(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	clip, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if clip.Frames() == 0 {
		return nil, fmt.Errorf("failed to decode %s: no audio frames", filepath.Base(path))
	}

	clip.Path = path
	return clip, nil
}
