package layers

import (
	"sort"

	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/internal/textnorm"
)

// Set holds the layer view and the block (root layer) view of one drawing.
type Set struct {
	byLayer map[string]*Profile
	byRoot  map[string]*Profile
}

// Aggregate folds prims into a Set. Every primitive counts toward its own
// layer; primitives created inside an instance also count toward the root
// layer of that instance, and a top-level instance counts toward its own
// layer in the block view.
func Aggregate(prims []geometry.Primitive) *Set {
	s := &Set{
		byLayer: map[string]*Profile{},
		byRoot:  map[string]*Profile{},
	}
	for _, prim := range prims {
		layer := prim.LayerName()
		s.profile(s.byLayer, layer).add(prim, prim.Root() == "")

		root := prim.Root()
		if root == "" {
			if prim.Kind() != geometry.PrimInstance {
				continue
			}
			root = layer
		}
		s.profile(s.byRoot, root).add(prim, false)
	}
	return s
}

func (s *Set) profile(m map[string]*Profile, name string) *Profile {
	key := textnorm.LayerKey(name)
	if p, ok := m[key]; ok {
		return p
	}
	p := newProfile(textnorm.Normalize(name), key)
	m[key] = p
	return p
}

// Get returns the layer profile for name, matched case-insensitively.
func (s *Set) Get(name string) (*Profile, bool) {
	p, ok := s.byLayer[textnorm.LayerKey(name)]
	return p, ok
}

// GetBlock returns the block-view profile whose root layer is name.
func (s *Set) GetBlock(name string) (*Profile, bool) {
	p, ok := s.byRoot[textnorm.LayerKey(name)]
	return p, ok
}

// Layers returns the layer profiles sorted by key.
func (s *Set) Layers() []*Profile { return sorted(s.byLayer) }

// Blocks returns the block-view profiles sorted by key.
func (s *Set) Blocks() []*Profile { return sorted(s.byRoot) }

// Len is the number of distinct layers.
func (s *Set) Len() int { return len(s.byLayer) }

func sorted(m map[string]*Profile) []*Profile {
	out := make([]*Profile, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
