package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/normanking/hologram/internal/rig"
	"github.com/normanking/hologram/internal/scene"
)

// Avatar is a loaded and bound avatar model.
type Avatar struct {
	Path       string
	Attachment string
	VRM        bool
	Binding    *rig.Binding
}

// LoadAvatar loads a glTF, GLB or VRM model, binds its rig and equips the
// optional attachment model.
func LoadAvatar(path, attachment string, logger zerolog.Logger) (*Avatar, error) {
	root, err := scene.LoadGLTF(path)
	if err != nil {
		return nil, fmt.Errorf("load avatar %s: %w", path, err)
	}
	b, err := rig.Bind(root, logger)
	if err != nil {
		return nil, fmt.Errorf("bind avatar %s: %w", path, err)
	}

	if attachment != "" {
		extra, err := scene.LoadGLTF(attachment)
		if err != nil {
			return nil, fmt.Errorf("load attachment %s: %w", attachment, err)
		}
		root.Add(extra)
		b.Equip(extra)
	}

	return &Avatar{
		Path:       path,
		Attachment: attachment,
		VRM:        IsVRM(path),
		Binding:    b,
	}, nil
}

// IsVRM reports whether path names a VRM model.
func IsVRM(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vrm")
}
