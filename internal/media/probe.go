package media

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// Info is the metadata probed from a clip header.
type Info struct {
	SampleRate int
	Channels   int
	Frames     int64
}

// Length returns the duration in seconds.
func (i Info) Length() float64 {
	if i.SampleRate <= 0 {
		return 0
	}
	return float64(i.Frames) / float64(i.SampleRate)
}

// go-mp3 always decodes to 16-bit stereo.
const mp3FrameBytes = 4

func probeMP3(r io.ReadSeeker) (Info, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	n := dec.Length()
	if n < 0 {
		return Info{}, fmt.Errorf("%w: unknown length", ErrCorrupt)
	}
	return Info{
		SampleRate: dec.SampleRate(),
		Channels:   2,
		Frames:     n / mp3FrameBytes,
	}, nil
}

type wavFormat struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// probeWAV walks the RIFF chunks for fmt and data.
func probeWAV(r io.ReadSeeker) (Info, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Info{}, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Info{}, fmt.Errorf("%w: not a RIFF/WAVE file", ErrCorrupt)
	}

	var (
		format  *wavFormat
		dataLen int64 = -1
	)
	for format == nil || dataLen < 0 {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return Info{}, fmt.Errorf("%w: missing fmt or data chunk", ErrCorrupt)
		}
		id := string(hdr[0:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:8]))

		switch id {
		case "fmt ":
			var f wavFormat
			if size < 16 {
				return Info{}, fmt.Errorf("%w: fmt chunk too small", ErrCorrupt)
			}
			if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
				return Info{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			format = &f
			size -= 16
		case "data":
			dataLen = size
		}
		// Chunks are word aligned.
		if size%2 == 1 {
			size++
		}
		if _, err := r.Seek(size, io.SeekCurrent); err != nil {
			return Info{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
	}

	if format.BlockAlign == 0 || format.SampleRate == 0 {
		return Info{}, fmt.Errorf("%w: zero block align or sample rate", ErrCorrupt)
	}
	return Info{
		SampleRate: int(format.SampleRate),
		Channels:   int(format.Channels),
		Frames:     dataLen / int64(format.BlockAlign),
	}, nil
}
