package scene

import (
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_AddRemove(t *testing.T) {
	a := NewNode("a", KindGroup)
	b := NewNode("b", KindGroup)
	c := NewNode("c", KindBone)

	a.Add(c)
	b.Add(c)

	assert.Empty(t, a.Children)
	assert.Equal(t, b, c.Parent)
	assert.Equal(t, c, b.Find("c"))
	assert.Nil(t, a.Find("c"))
}

func TestNode_Traverse(t *testing.T) {
	root := NewNode("root", KindGroup)
	hips := NewNode("Hips", KindBone)
	spine := NewNode("Spine", KindBone)
	body := NewNode("Body", KindMesh)
	root.Add(hips)
	hips.Add(spine)
	root.Add(body)

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })

	assert.Equal(t, []string{"root", "Hips", "Spine", "Body"}, names)
}

func TestNode_RotationStaysInSync(t *testing.T) {
	n := NewNode("n", KindBone)
	n.SetRotation(0.1, -0.2, 0.3)

	back := EulerFromQuat(n.Quaternion)
	assert.InDelta(t, 0.1, back.X(), 1e-9)
	assert.InDelta(t, -0.2, back.Y(), 1e-9)
	assert.InDelta(t, 0.3, back.Z(), 1e-9)

	n.SetQuaternion(mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1}))
	assert.InDelta(t, 0.5, n.Rotation.Z(), 1e-9)
	assert.InDelta(t, 0, n.Rotation.X(), 1e-9)
}

func TestNode_WorldQuaternion(t *testing.T) {
	parent := NewNode("p", KindBone)
	child := NewNode("c", KindBone)
	parent.Add(child)
	parent.SetRotation(0, 0, 0.4)
	child.SetRotation(0, 0, 0.2)

	got := EulerFromQuat(child.WorldQuaternion())
	assert.InDelta(t, 0.6, got.Z(), 1e-9)
}

func riggedDocument() *gltf.Document {
	return &gltf.Document{
		Scene:  gltf.Index(0),
		Scenes: []*gltf.Scene{{Nodes: []int{0}}},
		Nodes: []*gltf.Node{
			{Name: "Armature", Children: []int{1, 3}},
			{Name: "Hips", Children: []int{2}, Rotation: [4]float64{0, 0, 0, 1}},
			{Name: "Neck", Rotation: [4]float64{0, 0, 0.0998334, 0.9950042}},
			{Name: "Face", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
		},
		Meshes: []*gltf.Mesh{{
			Name: "Face",
			Primitives: []*gltf.Primitive{{
				Targets: []gltf.PrimitiveAttributes{{}, {}, {}},
			}},
			Weights: []float64{0, 0.5, 0},
			Extras: map[string]interface{}{
				"targetNames": []interface{}{"eyeBlinkLeft", "jawOpen"},
			},
		}},
		Skins: []*gltf.Skin{{Joints: []int{1, 2}}},
	}
}

func TestFromDocument(t *testing.T) {
	root, err := FromDocument(riggedDocument())
	require.NoError(t, err)

	hips := root.Find("Hips")
	require.NotNil(t, hips)
	assert.Equal(t, KindBone, hips.Kind)

	neck := root.Find("Neck")
	require.NotNil(t, neck)
	assert.Equal(t, KindBone, neck.Kind)
	assert.InDelta(t, 0.2, neck.Rotation.Z(), 1e-6)

	face := root.Find("Face")
	require.NotNil(t, face)
	assert.Equal(t, KindMesh, face.Kind)
	require.NotNil(t, face.Mesh)
	assert.Equal(t, map[string]int{"eyeBlinkLeft": 0, "jawOpen": 1, "2": 2}, face.Mesh.MorphTargetDictionary)
	assert.Equal(t, []float32{0, 0.5, 0}, face.Mesh.Influences)
	require.NotNil(t, face.Mesh.Skeleton)
	assert.Equal(t, []*Node{hips, neck}, face.Mesh.Skeleton.Bones)
}

func TestFromDocument_Errors(t *testing.T) {
	_, err := FromDocument(&gltf.Document{})
	assert.ErrorIs(t, err, ErrNoScene)

	doc := riggedDocument()
	doc.Nodes[0].Children = []int{1, 9}
	_, err = FromDocument(doc)
	assert.Error(t, err)
}

func TestLoadGLTF_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatar.gltf")
	require.NoError(t, gltf.Save(riggedDocument(), path))

	root, err := LoadGLTF(path)
	require.NoError(t, err)

	face := root.Find("Face")
	require.NotNil(t, face)
	assert.Contains(t, face.Mesh.MorphTargetDictionary, "jawOpen")
}

func TestLoadGLTF_Missing(t *testing.T) {
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb"))
	assert.Error(t, err)
}
