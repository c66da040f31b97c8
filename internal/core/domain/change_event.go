package domain

import "time"

// ChangeOp is the kind of filesystem change that was observed.
type ChangeOp uint8

const (
	// ChangeWrite is a created or modified file.
	ChangeWrite ChangeOp = iota
	// ChangeRemove is a removed or renamed file.
	ChangeRemove
)

// ChangeEvent is a classified filesystem change that can trigger a build run.
type ChangeEvent struct {
	Path      string
	Class     AssetClass
	Op        ChangeOp
	Timestamp time.Time
}

// ReloadKind is the kind of notification pushed to connected browsers.
type ReloadKind uint8

const (
	// ReloadFull asks clients to reload the whole page.
	ReloadFull ReloadKind = iota + 1
	// ReloadStyleInject asks clients to swap stylesheets in place.
	ReloadStyleInject
)

func (k ReloadKind) String() string {
	switch k {
	case ReloadFull:
		return "full-reload"
	case ReloadStyleInject:
		return "style-inject"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ReloadKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ReloadUpdate is a live-reload notification. Paths are relative to the output root.
type ReloadUpdate struct {
	Kind  ReloadKind `json:"kind"`
	Paths []string   `json:"paths,omitempty"`
}
