package heading

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// SegmentIndex is a simple grid-bucketed spatial index over road segments, for
// running the estimator outside a map-rendering host (the engine binary and
// tests). Hosts with their own spatial index implement SegmentSource directly.
type SegmentIndex struct {
	cellSize float64
	cells    map[[2]int][]Segment
}

const defaultCellSizeMeters = 50.0

func NewSegmentIndex() *SegmentIndex {
	return &SegmentIndex{
		cellSize: defaultCellSizeMeters,
		cells:    map[[2]int][]Segment{},
	}
}

// AddLine indexes a polyline as individual segments. Segment ids derive from
// the line id and the vertex offset so the sticky-segment logic can tell
// pieces of the same road apart.
func (idx *SegmentIndex) AddLine(lineID string, points []Point) {
	for i := 0; i < len(points)-1; i++ {
		segment := Segment{
			ID: fmt.Sprintf("%s/%d", lineID, i),
			A:  points[i],
			B:  points[i+1],
		}

		for _, cell := range idx.cellsForSegment(segment) {
			idx.cells[cell] = append(idx.cells[cell], segment)
		}
	}
}

// QueryNearbySegments returns every indexed segment within radius meters of
// the point.
func (idx *SegmentIndex) QueryNearbySegments(point Point, radius float64) []Segment {
	minCellX := int(math.Floor((point.X - radius) / idx.cellSize))
	maxCellX := int(math.Floor((point.X + radius) / idx.cellSize))
	minCellZ := int(math.Floor((point.Z - radius) / idx.cellSize))
	maxCellZ := int(math.Floor((point.Z + radius) / idx.cellSize))

	var segments []Segment
	seen := map[string]bool{}

	for cellX := minCellX; cellX <= maxCellX; cellX++ {
		for cellZ := minCellZ; cellZ <= maxCellZ; cellZ++ {
			for _, segment := range idx.cells[[2]int{cellX, cellZ}] {
				if seen[segment.ID] {
					continue
				}
				seen[segment.ID] = true

				if point.DistanceFromSegment(segment.A, segment.B) <= radius {
					segments = append(segments, segment)
				}
			}
		}
	}

	return segments
}

func (idx *SegmentIndex) cellsForSegment(segment Segment) [][2]int {
	minCellX := int(math.Floor(math.Min(segment.A.X, segment.B.X) / idx.cellSize))
	maxCellX := int(math.Floor(math.Max(segment.A.X, segment.B.X) / idx.cellSize))
	minCellZ := int(math.Floor(math.Min(segment.A.Z, segment.B.Z) / idx.cellSize))
	maxCellZ := int(math.Floor(math.Max(segment.A.Z, segment.B.Z) / idx.cellSize))

	var cells [][2]int
	for cellX := minCellX; cellX <= maxCellX; cellX++ {
		for cellZ := minCellZ; cellZ <= maxCellZ; cellZ++ {
			cells = append(cells, [2]int{cellX, cellZ})
		}
	}

	return cells
}

type geoJSONFeatureCollection struct {
	Features []struct {
		ID       string `json:"id"`
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// LoadRoadNetwork builds a SegmentIndex from a GeoJSON FeatureCollection of
// LineString / MultiLineString road features, projected into the local plane.
func LoadRoadNetwork(path string, projector Projector) (*SegmentIndex, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var collection geoJSONFeatureCollection
	if err := json.Unmarshal(contents, &collection); err != nil {
		return nil, fmt.Errorf("parse road network: %w", err)
	}

	index := NewSegmentIndex()

	for featureIndex, feature := range collection.Features {
		lineID := feature.ID
		if lineID == "" {
			lineID = fmt.Sprintf("feature-%d", featureIndex)
		}

		switch feature.Geometry.Type {
		case "LineString":
			var coordinates [][]float64
			if err := json.Unmarshal(feature.Geometry.Coordinates, &coordinates); err != nil {
				return nil, fmt.Errorf("parse road network feature %s: %w", lineID, err)
			}

			index.AddLine(lineID, projectLine(coordinates, projector))
		case "MultiLineString":
			var lines [][][]float64
			if err := json.Unmarshal(feature.Geometry.Coordinates, &lines); err != nil {
				return nil, fmt.Errorf("parse road network feature %s: %w", lineID, err)
			}

			for lineIndex, coordinates := range lines {
				index.AddLine(fmt.Sprintf("%s-%d", lineID, lineIndex), projectLine(coordinates, projector))
			}
		default:
			// point features etc - not road geometry, skip
		}
	}

	return index, nil
}

func projectLine(coordinates [][]float64, projector Projector) []Point {
	points := make([]Point, 0, len(coordinates))
	for _, coordinate := range coordinates {
		if len(coordinate) < 2 {
			continue
		}

		// GeoJSON orders longitude first
		points = append(points, projector.Project(coordinate[1], coordinate[0]))
	}

	return points
}
