package internal

import (
	"embed"
	"log"
	"math/rand"
	"strconv"

	"github.com/JoshVarga/svgparser"
)

// This file parses the svg fixtures and outputs point sets. This is not a full
// (or even correct) svg parser. It takes the center of every circle in the
// document as a site. If anything goes wrong, it panics.
//
// Fixtures are available by name in the fixtures/ directory, sans extension.

//go:embed fixtures
var fixtures embed.FS

func LoadFixture(name string) []Point {
	fixture, err := fixtures.Open("fixtures/" + name + ".svg")
	if err != nil {
		log.Fatalf("Could not load fixture %q: %v", name, err)
	}

	defer fixture.Close()
	rootEl, err := svgparser.Parse(fixture, true)
	if err != nil {
		log.Fatalf("Failed to parse fixture %q: %v", name, err)
	}

	circles := rootEl.FindAll("circle")
	if len(circles) == 0 {
		log.Fatalf("No circles found in fixture %q", name)
	}
	points := make([]Point, 0, len(circles))
	for _, circleEl := range circles {
		x, err := strconv.ParseFloat(circleEl.Attributes["cx"], 64)
		if err != nil {
			log.Fatalf("Invalid cx value %q: %v", circleEl.Attributes["cx"], err)
		}
		y, err := strconv.ParseFloat(circleEl.Attributes["cy"], 64)
		if err != nil {
			log.Fatalf("Invalid cy value %q: %v", circleEl.Attributes["cy"], err)
		}
		points = append(points, Point{x, y})
	}
	return points
}

// Some ad hoc code specified fixtures

// Uniform points in [0, size)^2. Continuous coordinates make duplicates and
// cocircular quadruples vanishingly unlikely.
func RandomPoints(seed int64, n int, size float64) []Point {
	rng := rand.New(rand.NewSource(seed))
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{rng.Float64() * size, rng.Float64() * size}
	}
	return points
}

// A w by h lattice with the given spacing. Every unit cell is cocircular.
func Lattice(w, h int, step float64) []Point {
	var points []Point
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			points = append(points, Point{float64(i) * step, float64(j) * step})
		}
	}
	return points
}

// n points on the line y = x/2.
func CollinearRow(n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{float64(2 * i), float64(i)}
	}
	return points
}

func ShufflePoints(seed int64, points []Point) []Point {
	out := append([]Point(nil), points...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
