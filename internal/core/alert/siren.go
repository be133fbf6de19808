package alert

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Tone is one step of the siren.
type Tone struct {
	Frequency float64       `json:"frequency"`
	Duration  time.Duration `json:"duration"`
}

// sirenPattern is the four-tone high/low alert played once per SOS edge.
var sirenPattern = []Tone{
	{Frequency: 880, Duration: 300 * time.Millisecond},
	{Frequency: 659, Duration: 300 * time.Millisecond},
	{Frequency: 880, Duration: 300 * time.Millisecond},
	{Frequency: 659, Duration: 300 * time.Millisecond},
}

// SirenPattern returns a copy of the siren tones.
func SirenPattern() []Tone {
	return append([]Tone(nil), sirenPattern...)
}

const (
	sirenAttack = 50 * time.Millisecond
	sirenGain   = 0.1
)

// RenderSiren renders the siren pattern as a 16-bit mono PCM WAV file. Each
// tone is a sawtooth with a short attack ramp and a linear decay.
func RenderSiren(sampleRate int) []byte {
	if sampleRate <= 0 {
		sampleRate = 22050
	}
	var samples []int16
	for _, tone := range sirenPattern {
		samples = append(samples, renderTone(tone, sampleRate)...)
	}

	dataLen := uint32(len(samples) * 2)
	var buf bytes.Buffer
	buf.Grow(44 + int(dataLen))
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))           // fmt chunk size
	binary.Write(&buf, binary.LittleEndian, uint16(1))            // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))            // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))   // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func renderTone(tone Tone, sampleRate int) []int16 {
	n := int(tone.Duration.Seconds() * float64(sampleRate))
	attack := int(sirenAttack.Seconds() * float64(sampleRate))
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		phase := t*tone.Frequency - math.Floor(t*tone.Frequency)
		saw := 2*phase - 1

		var env float64
		if i < attack {
			env = float64(i) / float64(attack)
		} else {
			env = float64(n-i) / float64(n-attack)
		}
		out[i] = int16(saw * env * sirenGain * math.MaxInt16)
	}
	return out
}
