package postprocess

import (
	"github.com/chewxy/math32"
)

const (
	// adaptationBase and adaptationRate give the fraction of the gap closed per second:
	// 1 - base^(rate·elapsed).
	adaptationBase = 0.98
	adaptationRate = 30
)

// AdaptedLuminance is the exposure update evaluated by CalculateAdaptedLum. The result
// moves from adapted toward measured without overshooting.
//
// Parameters:
//   - adapted: the previous adapted luminance
//   - measured: the luminance measured this frame
//   - elapsed: seconds since the previous adaptation
//
// Returns:
//   - float32: the new adapted luminance
func AdaptedLuminance(adapted, measured, elapsed float32) float32 {
	return adapted + (measured-adapted)*(1-math32.Pow(adaptationBase, adaptationRate*elapsed))
}

// Adaptation is the ping-pong pair of 1x1 adapted-luminance targets. Swap flips which slot is
// current without copying. The pending flag makes adaptation run at most once per Update.
type Adaptation struct {
	slots      [2]Texture
	generation int
	pending    bool
}

// Set installs the two targets and resets the generation.
func (a *Adaptation) Set(first, second Texture) {
	a.slots = [2]Texture{first, second}
	a.generation = 0
}

// Swap flips current and last.
func (a *Adaptation) Swap() {
	a.generation++
}

// Generation counts swaps since Set; its parity selects the current slot.
func (a *Adaptation) Generation() int {
	return a.generation
}

// Current returns the slot written by the latest adaptation.
func (a *Adaptation) Current() Texture {
	return a.slots[a.generation&1]
}

// Last returns the slot holding the previous adaptation.
func (a *Adaptation) Last() Texture {
	return a.slots[(a.generation+1)&1]
}

// Invalidate marks the adaptation as due for the next rendered frame.
func (a *Adaptation) Invalidate() {
	a.pending = true
}

// Consume reports whether an adaptation is due and clears the flag.
func (a *Adaptation) Consume() bool {
	due := a.pending
	a.pending = false
	return due
}

// Release frees both targets.
func (a *Adaptation) Release() {
	for i, t := range a.slots {
		if t != nil {
			t.Release()
		}
		a.slots[i] = nil
	}
}
