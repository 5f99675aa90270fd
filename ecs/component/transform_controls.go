package component

import "github.com/milk9111/workbench/replication"

// DragControlsDisabledField is the replicated field name of the latch.
const DragControlsDisabledField = "dragControlsDisabled"

// TransformControls is the per-entity behaviour that hands out the transform
// gizmo on click and suspends drag controls on release.
type TransformControls struct {
	// DragControlsDisabled latches true once a release has been seen on any
	// participant.
	DragControlsDisabled *replication.Bool

	Started bool
	// Seen is the stamp of the latch value last applied locally.
	Seen replication.Stamp
}

var TransformControlsComponent = NewComponent[TransformControls]()
