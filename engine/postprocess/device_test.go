package postprocess

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/common"
)

var errInjected = errors.New("injected failure")

type fakeTexture struct {
	label    string
	w, h     int
	format   Format
	released bool
}

func (t *fakeTexture) Label() string  { return t.label }
func (t *fakeTexture) Width() int     { return t.w }
func (t *fakeTexture) Height() int    { return t.h }
func (t *fakeTexture) Format() Format { return t.format }
func (t *fakeTexture) Release()       { t.released = true }

// recordingDevice logs every operation as "<op> <detail> -> <target>".
type recordingDevice struct {
	caps       Capabilities
	backBuffer *fakeTexture
	created    []*fakeTexture
	failAfter  int // fail the Nth CreateTexture when > 0
	ops        []string
	passes     []Pass
	scenes     []ScenePass
	sprites    map[string]*common.TextureStagingData
}

func newRecordingDevice(w, h int) *recordingDevice {
	return &recordingDevice{
		caps:       Capabilities{R16F: true, Multisample: true},
		backBuffer: &fakeTexture{label: "back_buffer", w: w, h: h, format: FormatRGBA8},
		sprites:    map[string]*common.TextureStagingData{},
	}
}

func (d *recordingDevice) Capabilities() Capabilities { return d.caps }

func (d *recordingDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	if d.failAfter > 0 && len(d.created)+1 >= d.failAfter {
		return nil, errInjected
	}
	t := &fakeTexture{label: desc.Label, w: desc.Width, h: desc.Height, format: desc.Format}
	d.created = append(d.created, t)
	return t, nil
}

func (d *recordingDevice) BackBuffer() Texture { return d.backBuffer }

func (d *recordingDevice) RegisterSprite(name string, data *common.TextureStagingData) error {
	d.sprites[name] = data
	return nil
}

func (d *recordingDevice) Clear(target Texture, _ [4]float32) error {
	d.ops = append(d.ops, "clear -> "+target.Label())
	return nil
}

func (d *recordingDevice) Draw(p Pass) error {
	d.ops = append(d.ops, fmt.Sprintf("%s -> %s", p.Technique, p.Target.Label()))
	d.passes = append(d.passes, p)
	return nil
}

func (d *recordingDevice) DrawScene(p ScenePass) error {
	d.ops = append(d.ops, "scene -> "+p.Target.Label())
	d.scenes = append(d.scenes, p)
	return nil
}

func (d *recordingDevice) texture(label string) *fakeTexture {
	for i := len(d.created) - 1; i >= 0; i-- {
		if d.created[i].label == label {
			return d.created[i]
		}
	}
	return nil
}

func (d *recordingDevice) count(op string) int {
	n := 0
	for _, o := range d.ops {
		if o == op {
			n++
		}
	}
	return n
}

func (d *recordingDevice) techniqueCount(t Technique) int {
	n := 0
	for _, p := range d.passes {
		if p.Technique == t {
			n++
		}
	}
	return n
}

func (d *recordingDevice) reset() {
	d.ops = nil
	d.passes = nil
	d.scenes = nil
}
