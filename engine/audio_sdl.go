package engine

import (
	"fmt"

	"github.com/Zyko0/go-sdl3/sdl"
)

// AudioOutput is the playback device as the session sees it. A paused
// output has to be resumed before anything it plays is audible.
type AudioOutput interface {
	Paused() bool
	Resume() error
	Play(res *SoundResource) bool
}

type sdlAudio struct {
	stream *sdl.AudioStream
	mixer  *AudioMixer
	paused bool
}

// openAudio opens the default playback device through the mixer callback.
// SDL opens device streams paused; the first mode selection resumes it.
func openAudio(mixer *AudioMixer) (*sdlAudio, error) {
	spec := &sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: AudioChannels, Freq: SampleRate}
	cb := sdl.NewAudioStreamCallback(mixer.Callback)
	stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(spec, cb)
	if stream == nil {
		return nil, fmt.Errorf("failed to open audio stream")
	}
	return &sdlAudio{stream: stream, mixer: mixer, paused: true}, nil
}

func (a *sdlAudio) Paused() bool { return a.paused }

func (a *sdlAudio) Resume() error {
	if a.stream == nil {
		return fmt.Errorf("audio stream closed")
	}
	a.stream.ResumeDevice()
	a.paused = false
	return nil
}

func (a *sdlAudio) Play(res *SoundResource) bool {
	return a.mixer.Play(res)
}

func (a *sdlAudio) Close() {
	if a.stream != nil {
		a.stream.Destroy()
		a.stream = nil
	}
}
