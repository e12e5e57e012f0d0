// Package alert plays short audible tones for engine events an operator
// cannot otherwise see: a capture failure the engine surfaces as critical
// (spec's "balloon notification surfaces critical errors", minus the
// balloon — there is no tray icon in this rewrite), and a successful
// configuration reload.
package alert

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	resampling "github.com/tphakala/go-audio-resampling"
)

const targetSampleRate = 44100

// Player manages audio chime playback for engine-level events.
type Player struct {
	errorData  []byte
	reloadData []byte
	enabled    bool
	logger     *log.Logger
	initOnce   sync.Once
	initErr    error
}

// New creates a Player with synthesized default tones: a descending tone
// for capture/critical errors, an ascending tone for successful reloads.
// If errorPath/reloadPath are non-empty, those WAV files are used instead,
// resampled to the internal target rate if their native rate differs.
// If enabled is false, Play* calls are no-ops.
func New(errorPath, reloadPath string, enabled bool, logger *log.Logger) (*Player, error) {
	p := &Player{
		errorData:  synthesizeTone(880, 440, 200*time.Millisecond),
		reloadData: synthesizeTone(440, 880, 120*time.Millisecond),
		enabled:    enabled,
		logger:     logger,
	}

	if errorPath != "" {
		data, err := loadAndNormalize(errorPath)
		if err != nil {
			return nil, fmt.Errorf("read error chime %s: %w", errorPath, err)
		}
		p.errorData = data
	}

	if reloadPath != "" {
		data, err := loadAndNormalize(reloadPath)
		if err != nil {
			return nil, fmt.Errorf("read reload chime %s: %w", reloadPath, err)
		}
		p.reloadData = data
	}

	return p, nil
}

// synthesizeTone renders a short sine sweep from startFreq to endFreq as a
// WAV byte buffer, with a raised-sine envelope to avoid clicks.
func synthesizeTone(startFreq, endFreq float64, duration time.Duration) []byte {
	n := int(float64(targetSampleRate) * duration.Seconds())
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: targetSampleRate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(targetSampleRate)
		progress := float64(i) / float64(n)
		freq := startFreq + (endFreq-startFreq)*progress
		envelope := math.Sin(math.Pi * progress)
		buf.Data[i] = int(math.Sin(2*math.Pi*freq*t) * envelope * 16000)
	}

	var out bytes.Buffer
	enc := goaudiowav.NewEncoder(&out, targetSampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		return nil
	}
	if err := enc.Close(); err != nil {
		return nil
	}
	return out.Bytes()
}

// loadAndNormalize reads a user-supplied WAV file and resamples it to
// targetSampleRate if needed, using go-audio-resampling's mono resampler
// at its low-quality setting.
func loadAndNormalize(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	dec := goaudiowav.NewDecoder(bytes.NewReader(data))
	buf, err := dec.FullPCMBuffer()
	if err != nil || buf == nil {
		// Not a WAV we can introspect; pass through as-is.
		return data, nil
	}
	if buf.Format == nil || buf.Format.SampleRate == targetSampleRate {
		return data, nil
	}

	floats := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		floats[i] = float64(s) / 32768.0
	}
	resampled, err := resampling.ResampleMono(floats, float64(buf.Format.SampleRate), float64(targetSampleRate), resampling.QualityLow)
	if err != nil {
		return nil, fmt.Errorf("resample chime: %w", err)
	}
	ints := make([]int, len(resampled))
	for i, f := range resampled {
		v := f * 32768.0
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		ints[i] = int(v)
	}

	var out bytes.Buffer
	enc := goaudiowav.NewEncoder(&out, targetSampleRate, 16, 1, 1)
	if err := enc.Write(&audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: targetSampleRate},
		Data:   ints,
	}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (p *Player) initSpeaker(format beep.Format) {
	p.initOnce.Do(func() {
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
}

func (p *Player) play(data []byte) {
	if !p.enabled || len(data) == 0 {
		return
	}

	go func() {
		reader := bytes.NewReader(data)
		streamer, format, err := wav.Decode(reader)
		if err != nil {
			if p.logger != nil {
				p.logger.Printf("alert: wav decode error: %v", err)
			}
			return
		}
		defer streamer.Close()

		p.initSpeaker(format)
		if p.initErr != nil {
			if p.logger != nil {
				p.logger.Printf("alert: speaker init error: %v", p.initErr)
			}
			return
		}

		done := make(chan struct{})
		speaker.Play(beep.Seq(streamer, beep.Callback(func() {
			close(done)
		})))
		<-done
	}()
}

// PlayCaptureFailure plays the critical-error tone (non-blocking).
func (p *Player) PlayCaptureFailure() {
	p.play(p.errorData)
}

// PlayReloadOK plays the successful-reload tone (non-blocking).
func (p *Player) PlayReloadOK() {
	p.play(p.reloadData)
}
