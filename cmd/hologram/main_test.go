package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/qmuntal/gltf"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/hologram/internal/bus"
	"github.com/normanking/hologram/internal/session"
)

func writeModel(t *testing.T) string {
	t.Helper()
	doc := &gltf.Document{
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Nodes: []*gltf.Node{
			{Name: "Armature", Children: []int{1, 2}},
			{Name: "Spine"},
			{Name: "Head", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
		},
		Meshes: []*gltf.Mesh{{
			Name:       "Head",
			Primitives: []*gltf.Primitive{{Targets: []gltf.PrimitiveAttributes{{}, {}}}},
			Weights:    []float64{0, 0},
			Extras: map[string]interface{}{
				"targetNames": []interface{}{"jawOpen", "eyeBlinkLeft"},
			},
		}},
		Skins: []*gltf.Skin{{Joints: []int{1}}},
	}
	path := filepath.Join(t.TempDir(), "robot.gltf")
	require.NoError(t, gltf.Save(doc, path))
	return path
}

func TestInspect(t *testing.T) {
	cmd := newInspectCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{writeModel(t)})

	require.NoError(t, cmd.Execute())

	s := out.String()
	assert.Contains(t, s, "eyeBlink_L")
	assert.Contains(t, s, "jawOpen")
	assert.Contains(t, s, "Spine")
	assert.Contains(t, s, "spine")
	assert.Contains(t, s, "No Neck bone")
}

func TestInspect_MissingModel(t *testing.T) {
	cmd := newInspectCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.glb")})

	assert.Error(t, cmd.Execute())
}

func TestAnnounceAvatar(t *testing.T) {
	model := writeModel(t)
	hat := writeModel(t)

	tests := []struct {
		name       string
		attachment string
		want       []bus.EventType
	}{
		{name: "plain", want: []bus.EventType{bus.EventTypeRigLoaded}},
		{name: "with attachment", attachment: hat, want: []bus.EventType{bus.EventTypeRigLoaded, bus.EventTypeAttachment}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avatar, err := session.LoadAvatar(model, tt.attachment, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.attachment, avatar.Attachment)

			events := bus.NewEventBus()
			got := make(chan bus.Event, 4)
			events.SubscribeAll(func(e bus.Event) { got <- e })

			announceAvatar(events, avatar)

			seen := map[bus.EventType]bus.Event{}
			for range tt.want {
				select {
				case e := <-got:
					seen[e.Type] = e
				case <-time.After(time.Second):
					t.Fatal("timed out waiting for event")
				}
			}
			for _, et := range tt.want {
				require.Contains(t, seen, et)
			}
			if tt.attachment != "" {
				assert.Equal(t, hat, seen[bus.EventTypeAttachment].Data["path"])
			}
			assert.Equal(t, model, seen[bus.EventTypeRigLoaded].Data["path"])
		})
	}
}

func TestLoadAvatar_ComponentTaggedOnce(t *testing.T) {
	var buf bytes.Buffer
	_, err := session.LoadAvatar(writeModel(t), "", zerolog.New(&buf))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	}
}
