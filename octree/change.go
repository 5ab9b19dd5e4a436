package octree

import "github.com/ISWBenjaminKaiser/ufomap/key"

// EnableChangeDetection turns change tracking on or off. Disabling it
// does not clear any codes already recorded.
func (o *Octree) EnableChangeDetection(enabled bool) {
	o.changeDetectionEnabled = enabled
	if enabled && o.changedCodes == nil {
		o.changedCodes = make(map[key.Code]struct{})
	}
}

// ChangeDetectionEnabled reports whether change tracking is currently on.
func (o *Octree) ChangeDetectionEnabled() bool {
	return o.changeDetectionEnabled
}

// ResetChangeDetection clears the recorded change set without disabling
// tracking.
func (o *Octree) ResetChangeDetection() {
	o.changedCodes = make(map[key.Code]struct{})
}

// GetChangedCodes returns a read-only snapshot of every Code whose stored
// fields were mutated since the set was last reset.
func (o *Octree) GetChangedCodes() []key.Code {
	out := make([]key.Code, 0, len(o.changedCodes))
	for c := range o.changedCodes {
		out = append(out, c)
	}
	return out
}

func (o *Octree) recordChange(c key.Code) {
	if !o.changeDetectionEnabled {
		return
	}
	if o.changedCodes == nil {
		o.changedCodes = make(map[key.Code]struct{})
	}
	o.changedCodes[c] = struct{}{}
}
