package core

import (
	"math"
	"sort"
	"time"
)

// BVHNode represents a node in the Bounding Volume Hierarchy. A node is either
// a leaf (Surfaces set, no children) or an interior node (both children set,
// no surfaces).
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Surfaces    []Surface // Leaf contents (nil for internal nodes)
}

// IsLeaf reports whether the node holds surfaces directly
func (n *BVHNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// BVHConfig controls tree construction
type BVHConfig struct {
	// MaxObjNum is the leaf-size threshold: sets smaller than this become leaves
	MaxObjNum int
	// ExplodeMeshes replaces aggregates in small sets with their faces
	ExplodeMeshes bool
	// Logger receives build statistics (optional)
	Logger Logger
}

// DefaultBVHConfig returns sensible default values
func DefaultBVHConfig() BVHConfig {
	return BVHConfig{
		MaxObjNum:     4,
		ExplodeMeshes: true,
	}
}

// BVH is a Bounding Volume Hierarchy for fast nearest-hit queries. It is built
// once and never mutated, so concurrent Intersect calls need no locking.
type BVH struct {
	Root   *BVHNode
	config BVHConfig
}

// NewBVH builds a BVH over surfaces. An empty input produces a single empty
// leaf whose box is empty and which never reports a hit.
func NewBVH(surfaces []Surface, config BVHConfig) *BVH {
	if config.MaxObjNum < 2 {
		config.MaxObjNum = 2
	}

	// Copy so that sorting during construction never reorders the caller's slice
	work := make([]Surface, len(surfaces))
	copy(work, surfaces)

	start := time.Now()
	bvh := &BVH{config: config}
	bvh.Root = bvh.build(work)

	if config.Logger != nil {
		stats := bvh.Stats()
		config.Logger.Debugf("BVH build time: %v, nodes: %d, leaves: %d, max depth: %d, surfaces: %d",
			time.Since(start), stats.TotalNodes, stats.LeafNodes, stats.MaxDepth, stats.TotalSurfaces)
	}
	return bvh
}

// boundsOf returns the union of the bounding boxes of surfaces
func boundsOf(surfaces []Surface) AABB {
	box := EmptyAABB()
	for _, surface := range surfaces {
		box = box.Merge(surface.BoundingBox())
	}
	return box
}

// build recursively partitions surfaces
func (bvh *BVH) build(surfaces []Surface) *BVHNode {
	boundingBox := boundsOf(surfaces)

	if len(surfaces) < bvh.config.MaxObjNum || len(surfaces) < 2 {
		if bvh.config.ExplodeMeshes {
			if node := bvh.explode(surfaces, boundingBox); node != nil {
				return node
			}
		}
		return &BVHNode{BoundingBox: boundingBox, Surfaces: surfaces}
	}

	left, right := splitBySurfaceArea(surfaces)
	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        bvh.build(left),
		Right:       bvh.build(right),
	}
}

// explode splits a small set that contains aggregates into one child holding
// the plain surfaces and one built from the aggregates' faces. It returns nil
// when the set contains no aggregate.
func (bvh *BVH) explode(surfaces []Surface, boundingBox AABB) *BVHNode {
	var others, faces []Surface
	found := false
	for _, surface := range surfaces {
		if aggregate, ok := surface.(Aggregate); ok {
			found = true
			faces = append(faces, aggregate.Faces()...)
			continue
		}
		others = append(others, surface)
	}
	if !found {
		return nil
	}

	// Faces are never aggregates, so these recursions cannot explode again
	if len(others) == 0 {
		return bvh.build(faces)
	}
	if len(faces) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Surfaces: others}
	}
	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        &BVHNode{BoundingBox: boundsOf(others), Surfaces: others},
		Right:       bvh.build(faces),
	}
}

// sortKey selects the box coordinate surfaces are ordered by
type sortKey int

const (
	keyMin sortKey = iota
	keyMax
	keyCenter
)

func keyValue(box AABB, axis int, key sortKey) float64 {
	switch key {
	case keyMin:
		return box.Min.Axis(axis)
	case keyMax:
		return box.Max.Axis(axis)
	default:
		return box.Center().Axis(axis)
	}
}

// splitBySurfaceArea picks, over every axis and sort key, the split index that
// minimizes area(left)·|left| + area(right)·|right|. Both halves are always
// non-empty.
func splitBySurfaceArea(surfaces []Surface) ([]Surface, []Surface) {
	n := len(surfaces)
	boxes := make([]AABB, n)
	for i, surface := range surfaces {
		boxes[i] = surface.BoundingBox()
	}

	bestCost := math.Inf(1)
	bestIndex := -1
	var bestOrder []int

	order := make([]int, n)
	leftAreas := make([]float64, n)
	rightAreas := make([]float64, n)

	for axis := 0; axis < 3; axis++ {
		for _, key := range []sortKey{keyMin, keyMax, keyCenter} {
			for i := range order {
				order[i] = i
			}
			sort.SliceStable(order, func(a, b int) bool {
				return keyValue(boxes[order[a]], axis, key) < keyValue(boxes[order[b]], axis, key)
			})

			// Sweep from both ends accumulating the union areas
			leftBounds, rightBounds := EmptyAABB(), EmptyAABB()
			for i := 0; i < n; i++ {
				leftBounds = leftBounds.Merge(boxes[order[i]])
				leftAreas[i] = leftBounds.Area()
				rightBounds = rightBounds.Merge(boxes[order[n-1-i]])
				rightAreas[n-1-i] = rightBounds.Area()
			}

			for i := 0; i < n-1; i++ {
				cost := leftAreas[i]*float64(i+1) + rightAreas[i+1]*float64(n-i-1)
				if cost < bestCost {
					bestCost = cost
					bestIndex = i
					bestOrder = append(bestOrder[:0], order...)
				}
			}
		}
	}

	// No finite cost (e.g. NaN areas): fall back to a median split
	if bestIndex < 0 || bestIndex >= n-1 {
		bestOrder = make([]int, n)
		for i := range bestOrder {
			bestOrder[i] = i
		}
		bestIndex = n/2 - 1
	}

	left := make([]Surface, 0, bestIndex+1)
	right := make([]Surface, 0, n-bestIndex-1)
	for i, idx := range bestOrder {
		if i <= bestIndex {
			left = append(left, surfaces[idx])
		} else {
			right = append(right, surfaces[idx])
		}
	}
	return left, right
}

// BoundingBox returns the overall bounding box of the tree
func (bvh *BVH) BoundingBox() AABB {
	if bvh.Root == nil {
		return EmptyAABB()
	}
	return bvh.Root.BoundingBox
}

// Intersect returns the nearest hit of ray against every surface in the tree
func (bvh *BVH) Intersect(ray Ray) (Intersection, bool) {
	if bvh.Root == nil {
		return Miss(), false
	}
	return bvh.intersectNode(bvh.Root, ray, math.Inf(1))
}

// intersectNode returns the nearest hit below node that is closer than limit
func (bvh *BVH) intersectNode(node *BVHNode, ray Ray, limit float64) (Intersection, bool) {
	hitBox, tEntry, _ := node.BoundingBox.Intersect(ray)
	if !hitBox || tEntry > limit {
		return Miss(), false
	}

	if node.IsLeaf() {
		return intersectClosest(node.Surfaces, ray, limit)
	}

	// A box that is not missed does not guarantee a hit inside it, so both
	// children are always queried
	closest, hitAnything := bvh.intersectNode(node.Left, ray, limit)
	if hitAnything {
		limit = closest.T
	}
	if hit, ok := bvh.intersectNode(node.Right, ray, limit); ok && (!hitAnything || hit.T < closest.T) {
		closest, hitAnything = hit, true
	}
	if !hitAnything {
		return Miss(), false
	}
	return closest, true
}

// IntersectLinear returns the nearest hit by testing every surface in turn.
// It is the brute-force reference the BVH must agree with.
func IntersectLinear(surfaces []Surface, ray Ray) (Intersection, bool) {
	return intersectClosest(surfaces, ray, math.Inf(1))
}

func intersectClosest(surfaces []Surface, ray Ray, limit float64) (Intersection, bool) {
	closest := Miss()
	hitAnything := false
	for _, surface := range surfaces {
		hit, ok := surface.Intersect(ray)
		if !ok || hit.T > limit {
			continue
		}
		if !hitAnything || hit.T < closest.T {
			closest = hit
			hitAnything = true
		}
	}
	return closest, hitAnything
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes    int
	LeafNodes     int
	MaxDepth      int
	AvgDepth      float64
	TotalSurfaces int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.LeafNodes++
		stats.TotalSurfaces += len(node.Surfaces)
		stats.AvgDepth += float64(depth)
		return
	}
	bvh.collectStats(node.Left, depth+1, stats)
	bvh.collectStats(node.Right, depth+1, stats)
}
