package model

// BuildingID is a non-owning handle to a placed building. Zero means none.
type BuildingID uint64

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}
