package audio

import (
	"fmt"

	"github.com/hajimehoshi/oto"
)

// playerBufferSize is the oto device buffer. Large enough to absorb
// scheduling hiccups at 22050 Hz without audible gaps.
const playerBufferSize = 8192

// Player plays PCM through the default audio device. Write blocks while
// the device drains, which paces the transmit loop at real time.
type Player struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewPlayer opens the default audio device for 16-bit mono output at
// sampleRate.
func NewPlayer(sampleRate int) (*Player, error) {
	ctx, err := oto.NewContext(sampleRate, 1, 2, playerBufferSize)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	return &Player{ctx: ctx, player: ctx.NewPlayer()}, nil
}

func (p *Player) Write(buf []byte) error {
	_, err := p.player.Write(buf)
	return err
}

// Close drains the device and releases it.
func (p *Player) Close() error {
	if err := p.player.Close(); err != nil {
		_ = p.ctx.Close()
		return err
	}
	return p.ctx.Close()
}
