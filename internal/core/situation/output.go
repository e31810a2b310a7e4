package situation

import (
	"github.com/zeusync/arenabot/internal/core/vmath"
)

// ControlOutput is the action requested for one tick. Axis values are in
// [-1, 1]; the zero value is the neutral output.
type ControlOutput struct {
	Throttle float64 `json:"throttle" yaml:"throttle"`
	Steer    float64 `json:"steer" yaml:"steer"`
	Pitch    float64 `json:"pitch" yaml:"pitch"`
	Yaw      float64 `json:"yaw" yaml:"yaw"`
	Roll     float64 `json:"roll" yaml:"roll"`
	Boost    bool    `json:"boost" yaml:"boost"`
	Slide    bool    `json:"slide" yaml:"slide"`
	Jump     bool    `json:"jump" yaml:"jump"`
}

// Neutral is the output sent when nothing else was decided.
func Neutral() ControlOutput { return ControlOutput{} }

// Clamped returns o with every axis limited to [-1, 1].
func (o ControlOutput) Clamped() ControlOutput {
	o.Throttle = vmath.Clamp1(o.Throttle)
	o.Steer = vmath.Clamp1(o.Steer)
	o.Pitch = vmath.Clamp1(o.Pitch)
	o.Yaw = vmath.Clamp1(o.Yaw)
	o.Roll = vmath.Clamp1(o.Roll)
	return o
}
