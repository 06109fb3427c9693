package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType represents different sound effects.
type SoundType int

const (
	SoundMove SoundType = iota
	SoundCapture
	SoundInvalid
	SoundWin
	SoundLoss
)

const sampleRate = 44100

// AudioManager plays procedurally generated sound effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates a new audio manager.
func NewAudioManager() *AudioManager {
	am := &AudioManager{
		context: audio.NewContext(sampleRate),
		enabled: true,
		volume:  0.5,
	}
	am.sounds = map[SoundType][]byte{
		SoundMove:    synth(0.08, clickWave(440, 0.3)),
		SoundCapture: synth(0.12, clickWave(330, 0.5)),
		SoundInvalid: synth(0.1, buzzWave(150, 0.1, 0.3)),
		SoundWin:     synth(0.4, chordWave(0.4, 0.5, 261.63, 329.63, 392.00)),
		SoundLoss:    synth(0.5, chordWave(0.5, 0.4, 220.00, 261.63, 311.13)),
	}
	return am
}

// wave returns the sample at time t in seconds, in [-1, 1].
type wave func(t float64) float64

// synth renders a wave as 16-bit little-endian stereo PCM.
func synth(duration float64, w wave) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		v := int16(math.Max(-1, math.Min(1, w(float64(i)/sampleRate))) * 32767)
		data[i*4] = byte(v)
		data[i*4+1] = byte(v >> 8)
		data[i*4+2] = byte(v)
		data[i*4+3] = byte(v >> 8)
	}
	return data
}

// clickWave is a short percussive click with a wooden overtone.
func clickWave(freq, amplitude float64) wave {
	return func(t float64) float64 {
		n := t * sampleRate
		noise := (math.Sin(n*0.3) + math.Sin(n*0.7)) * 0.3
		return (math.Sin(2*math.Pi*freq*t) + noise) * math.Exp(-t*30) * amplitude
	}
}

// buzzWave is a low buzz decaying linearly over duration.
func buzzWave(freq, duration, amplitude float64) wave {
	return func(t float64) float64 {
		w := math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(4*math.Pi*freq*t)
		return w * (1 - t/duration) * amplitude * 0.5
	}
}

// chordWave mixes freqs under a fade in and fade out.
func chordWave(duration, amplitude float64, freqs ...float64) wave {
	return func(t float64) float64 {
		progress := t / duration
		envelope := 1.0
		switch {
		case progress < 0.1:
			envelope = progress / 0.1
		case progress > 0.7:
			envelope = (1 - progress) / 0.3
		}
		sum := 0.0
		for _, f := range freqs {
			sum += math.Sin(2 * math.Pi * f * t)
		}
		return sum / float64(len(freqs)) * envelope * amplitude
	}
}

// Play plays a sound effect.
func (am *AudioManager) Play(sound SoundType) {
	if !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	// A player per call lets sounds overlap
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
