package scene

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// ErrNoScene is returned for documents without any root nodes.
var ErrNoScene = errors.New("gltf document has no scene")

// LoadGLTF reads a .gltf or .glb file and builds its scene graph.
func LoadGLTF(path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument builds the scene graph for the document's default scene.
// Skin joints become bones and meshes keep their morph target names.
func FromDocument(doc *gltf.Document) (*Node, error) {
	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}

	joints := make(map[int]bool)
	for _, skin := range doc.Skins {
		for _, j := range skin.Joints {
			joints[j] = true
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = convertNode(doc, gn, i, joints[i])
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("node %d: child index %d out of range", i, c)
			}
			nodes[i].Add(nodes[c])
		}
	}

	for i, gn := range doc.Nodes {
		if gn.Skin == nil || nodes[i].Mesh == nil {
			continue
		}
		if *gn.Skin >= len(doc.Skins) {
			return nil, fmt.Errorf("node %d: skin index %d out of range", i, *gn.Skin)
		}
		skel := &Skeleton{}
		for _, j := range doc.Skins[*gn.Skin].Joints {
			if j >= 0 && j < len(nodes) {
				skel.Bones = append(skel.Bones, nodes[j])
			}
		}
		nodes[i].Mesh.Bind(skel)
	}

	root := NewNode("Scene", KindGroup)
	for _, r := range roots {
		if r < 0 || r >= len(nodes) {
			return nil, fmt.Errorf("scene root index %d out of range", r)
		}
		root.Add(nodes[r])
	}
	return root, nil
}

func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScene
	}
	idx := 0
	if doc.Scene != nil {
		idx = *doc.Scene
	}
	if idx < 0 || idx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", idx)
	}
	return doc.Scenes[idx].Nodes, nil
}

func convertNode(doc *gltf.Document, gn *gltf.Node, i int, isJoint bool) *Node {
	name := gn.Name
	if name == "" {
		name = "node_" + strconv.Itoa(i)
	}
	n := NewNode(name, KindGroup)
	if isJoint {
		n.Kind = KindBone
	}

	t := gn.TranslationOrDefault()
	n.Translation = mgl64.Vec3{t[0], t[1], t[2]}
	s := gn.ScaleOrDefault()
	n.Scale = mgl64.Vec3{s[0], s[1], s[2]}
	r := gn.RotationOrDefault()
	n.SetQuaternion(mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}})

	if gn.Mesh != nil && *gn.Mesh < len(doc.Meshes) {
		n.Mesh = convertMesh(doc.Meshes[*gn.Mesh])
		if !isJoint {
			n.Kind = KindMesh
		}
	}
	return n
}

func convertMesh(gm *gltf.Mesh) *Mesh {
	count := 0
	for _, prim := range gm.Primitives {
		if len(prim.Targets) > count {
			count = len(prim.Targets)
		}
	}

	m := &Mesh{
		MorphTargetDictionary: make(map[string]int, count),
		Influences:            make([]float32, count),
	}
	for i, w := range gm.Weights {
		if i < count {
			m.Influences[i] = float32(w)
		}
	}

	names := targetNames(gm)
	for i := 0; i < count; i++ {
		name := strconv.Itoa(i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		m.MorphTargetDictionary[name] = i
	}
	return m
}

// targetNames reads the de facto "targetNames" mesh extra written by most
// exporters.
func targetNames(gm *gltf.Mesh) []string {
	extras, ok := gm.Extras.(map[string]interface{})
	if !ok {
		return nil
	}
	raw, ok := extras["targetNames"].([]interface{})
	if !ok {
		return nil
	}
	names := make([]string, len(raw))
	for i, v := range raw {
		if s, ok := v.(string); ok {
			names[i] = s
		}
	}
	return names
}
