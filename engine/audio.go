package engine

import (
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/Zyko0/go-sdl3/sdl"
)

const (
	MaxActiveSounds   = 16
	AudioScratchBytes = 4096

	SampleRate    = 44100
	AudioChannels = 2
)

type SoundResource struct {
	Data []byte
	Spec sdl.AudioSpec
}

// Samples views the buffer as interleaved signed 16-bit samples.
func (r *SoundResource) Samples() []int16 {
	if len(r.Data) < 2 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&r.Data[0])), len(r.Data)/2)
}

// ToneSpec describes a sine beep with a click-free envelope: a linear
// attack to Peak, an exponential decay to Floor, then a short linear fade
// to silence before Duration.
type ToneSpec struct {
	FreqHz   float64
	Peak     float64
	Floor    float64
	Attack   time.Duration
	Decay    time.Duration
	Duration time.Duration
}

func DefaultToneSpec() ToneSpec {
	return ToneSpec{
		FreqHz:   1000,
		Peak:     0.5,
		Floor:    0.001,
		Attack:   10 * time.Millisecond,
		Decay:    100 * time.Millisecond,
		Duration: 150 * time.Millisecond,
	}
}

// Gain returns the envelope value at t.
func (ts ToneSpec) Gain(t time.Duration) float64 {
	switch {
	case t <= 0 || t >= ts.Duration:
		return 0
	case t < ts.Attack:
		return ts.Peak * float64(t) / float64(ts.Attack)
	case t < ts.Decay:
		frac := float64(t-ts.Attack) / float64(ts.Decay-ts.Attack)
		return ts.Peak * math.Pow(ts.Floor/ts.Peak, frac)
	default:
		frac := float64(ts.Duration-t) / float64(ts.Duration-ts.Decay)
		return ts.Floor * frac
	}
}

// SynthesizeTone renders spec into a stereo S16 buffer at SampleRate.
func SynthesizeTone(ts ToneSpec) *SoundResource {
	frames := int(int64(ts.Duration) * SampleRate / int64(time.Second))
	data := make([]byte, frames*AudioChannels*2)
	res := &SoundResource{
		Data: data,
		Spec: sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: AudioChannels, Freq: SampleRate},
	}
	if frames == 0 {
		return res
	}

	samples := res.Samples()
	for i := 0; i < frames; i++ {
		t := time.Duration(int64(i) * int64(time.Second) / SampleRate)
		phase := 2 * math.Pi * ts.FreqHz * float64(i) / SampleRate
		v := int16(math.Round(ts.Gain(t) * math.Sin(phase) * math.MaxInt16))
		for c := 0; c < AudioChannels; c++ {
			samples[i*AudioChannels+c] = v
		}
	}
	return res
}

type ActiveSound struct {
	Resource *SoundResource
	PlayPos  uint32
	Active   bool
}

type AudioMixer struct {
	Slots   [MaxActiveSounds]ActiveSound
	Mutex   sync.Mutex
	Scratch []byte
}

func NewAudioMixer() *AudioMixer {
	return &AudioMixer{
		Scratch: make([]byte, AudioScratchBytes),
	}
}

// Mix adds every active sound into dst with saturation and advances the
// play positions. dst is not cleared first.
func (m *AudioMixer) Mix(dst []int16) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for i := 0; i < MaxActiveSounds; i++ {
		s := &m.Slots[i]
		if !s.Active {
			continue
		}

		soundRemaining := uint32(len(s.Resource.Data)) - s.PlayPos
		toMix := uint32(len(dst) * 2)
		if toMix > soundRemaining {
			toMix = soundRemaining
		}

		src := s.Resource.Samples()[s.PlayPos/2 : (s.PlayPos+toMix)/2]
		for j := range src {
			val := int32(dst[j]) + int32(src[j])
			if val > math.MaxInt16 {
				val = math.MaxInt16
			} else if val < math.MinInt16 {
				val = math.MinInt16
			}
			dst[j] = int16(val)
		}

		s.PlayPos += toMix
		if s.PlayPos >= uint32(len(s.Resource.Data)) {
			s.Active = false
		}
	}
}

func (m *AudioMixer) Callback(stream *sdl.AudioStream, additionalAmount, totalAmount int32) {
	remaining := int(additionalAmount)
	for remaining > 0 {
		chunk := remaining
		if chunk > AudioScratchBytes {
			chunk = AudioScratchBytes
		}

		clear(m.Scratch[:chunk])
		dst := unsafe.Slice((*int16)(unsafe.Pointer(&m.Scratch[0])), chunk/2)
		m.Mix(dst)

		stream.PutData(m.Scratch[:chunk])
		remaining -= chunk
	}
}

func (m *AudioMixer) Play(res *SoundResource) bool {
	if res == nil || len(res.Data) == 0 {
		return false
	}

	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	for i := 0; i < MaxActiveSounds; i++ {
		if !m.Slots[i].Active {
			m.Slots[i].Resource = res
			m.Slots[i].PlayPos = 0
			m.Slots[i].Active = true
			return true
		}
	}
	return false
}

// Active reports how many slots are still playing.
func (m *AudioMixer) Active() int {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()

	n := 0
	for i := range m.Slots {
		if m.Slots[i].Active {
			n++
		}
	}
	return n
}
