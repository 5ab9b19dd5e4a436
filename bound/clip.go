package bound

import "github.com/golang/geo/r3"

// axisValue lets the six-plane sweep in MoveLineIntoBBX stay
// generic over X/Y/Z without repeating the same branch six times.
type axis int

const (
	axisX axis = iota
	axisY
	axisZ
)

func axisValue(v r3.Vector, a axis) float64 {
	switch a {
	case axisX:
		return v.X
	case axisY:
		return v.Y
	default:
		return v.Z
	}
}

// intersect implements §4.5's plane-intersection formula:
// p1 + (p2-p1)*(-d1/(d2-d1)).
func intersect(d1, d2 float64, p1, p2 r3.Vector) r3.Vector {
	t := -d1 / (d2 - d1)
	return p1.Add(p2.Sub(p1).Mul(t))
}

// otherTwoInRange reports whether hit's coordinates on the two axes other
// than a fall within b's range on those axes, i.e. whether the plane
// intersection actually lands on the box's face rather than off to the
// side of it.
func otherTwoInRange(b AABB, hit r3.Vector, a axis) bool {
	inRange := func(v, lo, hi float64) bool { return v >= lo && v <= hi }
	switch a {
	case axisX:
		return inRange(hit.Y, b.Min.Y, b.Max.Y) && inRange(hit.Z, b.Min.Z, b.Max.Z)
	case axisY:
		return inRange(hit.X, b.Min.X, b.Max.X) && inRange(hit.Z, b.Min.Z, b.Max.Z)
	default:
		return inRange(hit.X, b.Min.X, b.Max.X) && inRange(hit.Y, b.Min.Y, b.Max.Y)
	}
}

// MoveLineIntoBBX clips the segment [origin, end] to b, mutating whichever
// endpoints lie outside it. It returns false iff the segment lies
// entirely outside b.
func MoveLineIntoBBX(b AABB, origin, end r3.Vector) (newOrigin, newEnd r3.Vector, ok bool) {
	originIn := b.Contains(origin)
	endIn := b.Contains(end)
	if originIn && endIn {
		return origin, end, true
	}

	var hits []r3.Vector
	for _, a := range [...]axis{axisX, axisY, axisZ} {
		for _, planeVal := range [...]float64{axisValue(b.Min, a), axisValue(b.Max, a)} {
			d1 := axisValue(origin, a) - planeVal
			d2 := axisValue(end, a) - planeVal
			if d1*d2 >= 0 {
				continue
			}
			hit := intersect(d1, d2, origin, end)
			if otherTwoInRange(b, hit, a) {
				hits = append(hits, hit)
			}
		}
	}

	switch len(hits) {
	case 0:
		// Neither endpoint inside and no face crossed: entirely outside.
		return r3.Vector{}, r3.Vector{}, false

	case 1:
		newOrigin, newEnd = origin, end
		if !originIn {
			newOrigin = hits[0]
		}
		if !endIn {
			newEnd = hits[0]
		}
		return newOrigin, newEnd, true

	default:
		h0, h1 := hits[0], hits[1]
		costDirect := origin.Sub(h0).Norm2() + end.Sub(h1).Norm2()
		costSwapped := origin.Sub(h1).Norm2() + end.Sub(h0).Norm2()
		if costDirect <= costSwapped {
			return h0, h1, true
		}
		return h1, h0, true
	}
}
