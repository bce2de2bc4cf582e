package main

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"shallows/sonar"
)

const (
	audioSampleRate = 48000
	// listenSlowdown stretches echoes in time, lowering their pitch into
	// the audible band.
	listenSlowdown = 20
	listenGain     = 0.8
	pcm16MaxValue  = 32767
	audioFrameSize = 4 // 16-bit stereo
)

// echoPCM resamples a signal recorded at step dt to 16-bit stereo PCM,
// slowed down and normalised to its peak.
func echoPCM(signal []float64, dt, slowdown float64, rate int) []byte {
	idx := sonar.PeakIndex(signal)
	if idx < 0 || signal[idx] == 0 {
		return nil
	}
	peak := math.Abs(signal[idx])
	frames := int(math.Round(float64(len(signal)) * dt * slowdown * float64(rate)))
	pcm := make([]byte, frames*audioFrameSize)
	for i := 0; i < frames; i++ {
		pos := float64(i) / float64(rate) / slowdown / dt
		j := int(pos)
		v := signal[min(j, len(signal)-1)]
		if j+1 < len(signal) {
			frac := pos - float64(j)
			v += frac * (signal[j+1] - v)
		}
		s := int16(v / peak * listenGain * pcm16MaxValue)
		base := i * audioFrameSize
		pcm[base] = byte(s)
		pcm[base+1] = byte(s >> 8)
		pcm[base+2] = pcm[base]
		pcm[base+3] = pcm[base+1]
	}
	return pcm
}

// playEcho plays a signal and blocks until playback ends.
func playEcho(signal []float64, dt float64) error {
	pcm := echoPCM(signal, dt, listenSlowdown, audioSampleRate)
	if len(pcm) == 0 {
		return nil
	}
	ctx := audio.NewContext(audioSampleRate)
	player := ctx.NewPlayerFromBytes(pcm)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
