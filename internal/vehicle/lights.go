package vehicle

import "math"

// Emergency light timing and intensities.
const (
	BlinkPhase = 0.5 // seconds per phase; four phases per cycle

	LitEmissive   = 0.8
	UnlitEmissive = 0.1
	LitPoint      = 3.0
	UnlitPoint    = 0.0
)

// Lamp is the render state of one emergency lamp.
type Lamp struct {
	On       bool    `json:"on"`
	Emissive float64 `json:"emissive"`
	Point    float64 `json:"point"`
}

// Lights is the render state of the light bar.
type Lights struct {
	Phase int  `json:"phase"`
	Red   Lamp `json:"red"`
	Blue  Lamp `json:"blue"`
}

// LightsAt computes the light bar after timer seconds of blinking.
// Red is lit in phases 0-1 and blue in phases 2-3; nothing is lit when
// the bar is switched off.
func LightsAt(timer float64, switchedOn bool) Lights {
	phase := int(math.Floor(timer/BlinkPhase)) % 4
	if phase < 0 {
		phase += 4
	}
	return Lights{
		Phase: phase,
		Red:   lamp(switchedOn && phase < 2),
		Blue:  lamp(switchedOn && phase >= 2),
	}
}

func lamp(on bool) Lamp {
	if on {
		return Lamp{On: true, Emissive: LitEmissive, Point: LitPoint}
	}
	return Lamp{Emissive: UnlitEmissive, Point: UnlitPoint}
}
