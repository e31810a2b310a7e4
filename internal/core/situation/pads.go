package situation

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PadRadius is how close a car must get to a pad to pick it up.
	PadRadius = 165.0

	SmallPadAmount  = 12.0
	BigPadAmount    = 100.0
	SmallPadRespawn = 4.0
	BigPadRespawn   = 10.0

	MaxBoost = 100.0
)

// BoostPad is a pickup on the floor. A pad is active when its respawn timer
// has run out.
type BoostPad struct {
	Position    mgl64.Vec3 `json:"position" yaml:"position"`
	Big         bool       `json:"big" yaml:"big"`
	RespawnLeft float64    `json:"respawn_left" yaml:"respawn_left"`
}

func (p BoostPad) Active() bool { return p.RespawnLeft <= 0 }

// Amount is the boost granted on pickup.
func (p BoostPad) Amount() float64 {
	if p.Big {
		return BigPadAmount
	}
	return SmallPadAmount
}

// RespawnTime is how long the pad stays inactive after a pickup.
func (p BoostPad) RespawnTime() float64 {
	if p.Big {
		return BigPadRespawn
	}
	return SmallPadRespawn
}
