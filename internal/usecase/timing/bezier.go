package timing

import "smart-apply/internal/domain/entity"

const (
	minPathSteps = 15
	maxPathSteps = 30

	originJitter      = 100.0
	destinationJitter = 50.0
)

// BezierPath returns steps points of the cubic curve from..to, excluding from and ending exactly at to.
func BezierPath(from, c1, c2, to entity.Point, steps int) []entity.Point {
	if steps < 1 {
		steps = 1
	}
	points := make([]entity.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		u := 1 - t
		points = append(points, entity.Point{
			X: u*u*u*from.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*to.X,
			Y: u*u*u*from.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*to.Y,
		})
	}
	points[len(points)-1] = to
	return points
}

// Path draws randomized control points and a step count for a move from..to.
func (s *Simulator) Path(from, to entity.Point) []entity.Point {
	c1 := entity.Point{
		X: from.X + s.uniform(-originJitter, originJitter),
		Y: from.Y + s.uniform(-originJitter, originJitter),
	}
	c2 := entity.Point{
		X: to.X + s.uniform(-destinationJitter, destinationJitter),
		Y: to.Y + s.uniform(-destinationJitter, destinationJitter),
	}
	steps := minPathSteps + s.rnd.IntN(maxPathSteps-minPathSteps+1)
	return BezierPath(from, c1, c2, to, steps)
}
