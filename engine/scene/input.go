package scene

import (
	"github.com/Carmen-Shannon/oxy-hdr/common"
)

func (s *scene) HandleKey(keyCode uint32) bool {
	switch keyCode {
	case common.KeySpace:
		s.TogglePause()
	case common.KeyRight:
		s.RotateCamera(RotateStep)
	case common.KeyLeft:
		s.RotateCamera(-RotateStep)
	case common.KeyPageUp:
		s.Zoom(-ZoomStep)
	case common.KeyPageDown:
		s.Zoom(ZoomStep)
	case common.Key1, common.Key2, common.Key3:
		s.SetCameraMode(int(keyCode - common.Key1))
	case common.KeyUp:
		s.AdjustLight(true)
	case common.KeyDown:
		s.AdjustLight(false)
	case common.KeyG:
		s.CycleGlare()
	case common.KeyT:
		s.ToggleToneMap()
	case common.KeyB:
		s.ToggleBlueShift()
	default:
		return false
	}
	return true
}

func (s *scene) HandleScroll(delta float32) {
	switch {
	case delta > 0:
		s.Zoom(-ZoomStep)
	case delta < 0:
		s.Zoom(ZoomStep)
	}
}
