package entity

type Point struct {
	X float64
	Y float64
}

type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}
