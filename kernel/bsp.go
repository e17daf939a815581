package kernel

// node is a binary space partitioning tree node. Polygons coplanar with
// the node plane are stored on the node.
type node struct {
	plane    *plane
	front    *node
	back     *node
	polygons []polygon
}

func newNode(polys []polygon) *node {
	n := &node{}
	if len(polys) > 0 {
		n.build(polys)
	}
	return n
}

// invert converts solid space to empty space and empty space to solid space.
func (n *node) invert() {
	for i := range n.polygons {
		n.polygons[i] = n.polygons[i].flipped()
	}
	if n.plane != nil {
		fp := n.plane.flipped()
		n.plane = &fp
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes every part of polys inside the solid of this tree.
func (n *node) clipPolygons(polys []polygon) []polygon {
	if n.plane == nil {
		return append([]polygon(nil), polys...)
	}
	var fr, bk []polygon
	for _, p := range polys {
		n.plane.split(p, &fr, &bk, &fr, &bk)
	}
	if n.front != nil {
		fr = n.front.clipPolygons(fr)
	}
	if n.back != nil {
		bk = n.back.clipPolygons(bk)
	} else {
		bk = nil
	}
	return append(fr, bk...)
}

// clipTo removes every polygon of n inside the solid of bsp.
func (n *node) clipTo(bsp *node) {
	n.polygons = bsp.clipPolygons(n.polygons)
	if n.front != nil {
		n.front.clipTo(bsp)
	}
	if n.back != nil {
		n.back.clipTo(bsp)
	}
}

func (n *node) allPolygons() []polygon {
	var out []polygon
	var walk func(*node)
	walk = func(n *node) {
		out = append(out, n.polygons...)
		if n.front != nil {
			walk(n.front)
		}
		if n.back != nil {
			walk(n.back)
		}
	}
	walk(n)
	return out
}

// build inserts polys into the tree. The first polygon of each call
// chooses the splitting plane of an empty node.
func (n *node) build(polys []polygon) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		p := polys[0].p
		n.plane = &p
	}
	var fr, bk []polygon
	for _, p := range polys {
		n.plane.split(p, &n.polygons, &n.polygons, &fr, &bk)
	}
	if len(fr) > 0 {
		if n.front == nil {
			n.front = &node{}
		}
		n.front.build(fr)
	}
	if len(bk) > 0 {
		if n.back == nil {
			n.back = &node{}
		}
		n.back.build(bk)
	}
}
