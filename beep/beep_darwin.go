//go:build darwin

package beep

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

var (
	ctxOnce sync.Once
	ctx     *malgo.AllocatedContext
	playMu  sync.Mutex
)

func play(mono []int16) {
	ctxOnce.Do(func() {
		c, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
		if err == nil {
			ctx = c
		}
	})
	if ctx == nil || len(mono) == 0 {
		return
	}

	playMu.Lock()
	defer playMu.Unlock()

	pcm := make([]byte, len(mono)*2)
	for i, s := range mono {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var mu sync.Mutex
	pos := 0
	dev, err := malgo.InitDevice(ctx.Context, config, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			mu.Lock()
			n := copy(out, pcm[pos:])
			pos += n
			mu.Unlock()
			clear(out[n:])
		},
	})
	if err != nil {
		return
	}
	defer dev.Uninit()
	if err := dev.Start(); err != nil {
		return
	}
	time.Sleep(time.Duration(len(mono))*time.Second/sampleRate + 50*time.Millisecond)
	dev.Stop()
}
