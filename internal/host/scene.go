package host

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-audio/internal/playback"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// RootNode is the scene root. It cannot be removed.
const RootNode sound.NodeID = "root"

// DeviceFactory builds the device for a new sound or child node.
type DeviceFactory func() sound.Device

// Node is a point in the scene tree. Position is relative to the parent.
type Node struct {
	ID       sound.NodeID `json:"id"`
	Parent   sound.NodeID `json:"parent,omitempty"`
	Position sound.Vec3   `json:"position"`
	// Spawned marks nodes created for child devices.
	Spawned bool `json:"spawned"`
}

// Scene is the node tree sounds are placed in. It implements sound.Host.
//
// Scene is not safe for concurrent use; it belongs to the Loop goroutine.
type Scene struct {
	nodes   map[sound.NodeID]*Node
	factory DeviceFactory
	next    int
}

// NewScene returns a scene holding only the root node. A nil factory
// builds simulated playback devices.
func NewScene(factory DeviceFactory) *Scene {
	if factory == nil {
		factory = func() sound.Device { return playback.New() }
	}
	return &Scene{
		nodes:   map[sound.NodeID]*Node{RootNode: {ID: RootNode}},
		factory: factory,
	}
}

// AddNode places a named node under parent (root when empty).
func (s *Scene) AddNode(id, parent sound.NodeID, pos sound.Vec3) error {
	if id == "" {
		return ErrInvalidNode
	}
	if _, ok := s.nodes[id]; ok {
		return fmt.Errorf("%w: %s", ErrNodeExists, id)
	}
	if parent == "" {
		parent = RootNode
	}
	if _, ok := s.nodes[parent]; !ok {
		return fmt.Errorf("%w: parent %s", ErrNodeNotFound, parent)
	}
	s.nodes[id] = &Node{ID: id, Parent: parent, Position: pos}
	return nil
}

// MoveNode changes a node's relative position.
func (s *Scene) MoveNode(id sound.NodeID, pos sound.Vec3) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	n.Position = pos
	return nil
}

// RemoveNode deletes a node and everything below it. Devices on removed
// spawned nodes keep their state; the sound manager sees the node gone
// through HasNode.
func (s *Scene) RemoveNode(id sound.NodeID) error {
	if id == RootNode {
		return fmt.Errorf("%w: root", ErrInvalidNode)
	}
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	for _, child := range s.children(id) {
		_ = s.RemoveNode(child) //nolint:errcheck // child exists
	}
	delete(s.nodes, id)
	return nil
}

func (s *Scene) children(id sound.NodeID) []sound.NodeID {
	var out []sound.NodeID
	for cid, n := range s.nodes {
		if n.Parent == id && cid != RootNode {
			out = append(out, cid)
		}
	}
	return out
}

// Node returns a copy of a node.
func (s *Scene) Node(id sound.NodeID) (Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns every node sorted by id.
func (s *Scene) Nodes() []Node {
	out := make([]Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WorldPosition sums positions from the root down to id.
func (s *Scene) WorldPosition(id sound.NodeID) (sound.Vec3, bool) {
	var p sound.Vec3
	seen := 0
	for cur := id; cur != ""; {
		n, ok := s.nodes[cur]
		if !ok {
			return sound.Vec3{}, false
		}
		p.X += n.Position.X
		p.Y += n.Position.Y
		p.Z += n.Position.Z
		cur = n.Parent
		if seen++; seen > len(s.nodes) {
			return sound.Vec3{}, false
		}
	}
	return p, true
}

// NewDevice builds an unplaced device.
func (s *Scene) NewDevice() sound.Device {
	return s.factory()
}

// Spawn creates a node for a child device. A targeted placement hangs the
// node under the target with Position as the offset; otherwise the node
// sits under the root at Position.
func (s *Scene) Spawn(p sound.Placement) (sound.NodeID, sound.Device, error) {
	parent := RootNode
	if p.Target != "" {
		if _, ok := s.nodes[p.Target]; !ok {
			return "", nil, fmt.Errorf("%w: target %s", ErrNodeNotFound, p.Target)
		}
		parent = p.Target
	}
	s.next++
	id := sound.NodeID(fmt.Sprintf("sound-%d", s.next))
	for s.nodes[id] != nil {
		s.next++
		id = sound.NodeID(fmt.Sprintf("sound-%d", s.next))
	}
	s.nodes[id] = &Node{ID: id, Parent: parent, Position: p.Position, Spawned: true}
	return id, s.factory(), nil
}

// Move re-places a spawned node, re-parenting it when the target changes.
func (s *Scene) Move(id sound.NodeID, p sound.Placement) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	parent := RootNode
	if p.Target != "" {
		if _, ok := s.nodes[p.Target]; !ok {
			return fmt.Errorf("%w: target %s", ErrNodeNotFound, p.Target)
		}
		if s.below(p.Target, id) {
			return fmt.Errorf("%w: %s would contain itself", ErrInvalidNode, id)
		}
		parent = p.Target
	}
	n.Parent = parent
	n.Position = p.Position
	return nil
}

// below reports whether node sits in the subtree of ancestor.
func (s *Scene) below(node, ancestor sound.NodeID) bool {
	for cur := node; cur != ""; {
		if cur == ancestor {
			return true
		}
		n, ok := s.nodes[cur]
		if !ok {
			return false
		}
		cur = n.Parent
	}
	return false
}

// Release removes a spawned node. Unknown ids are ignored.
func (s *Scene) Release(id sound.NodeID) {
	if id == RootNode {
		return
	}
	if _, ok := s.nodes[id]; ok {
		_ = s.RemoveNode(id) //nolint:errcheck // exists
	}
}

// HasNode reports whether id is a live node.
func (s *Scene) HasNode(id sound.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}
