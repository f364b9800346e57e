package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osuushi/delaunay"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// Read newline separated "x y" points. Blank lines and lines starting with #
// are skipped.
func readPoints(in io.Reader) ([]delaunay.Point, error) {
	var points []delaunay.Point
	scanner := bufio.NewScanner(in)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		point, err := parsePoint(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNumber)
		}
		points = append(points, point)
	}
	return points, errors.Wrap(scanner.Err(), "scanning input")
}

func parsePoint(line string) (delaunay.Point, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return delaunay.Point{}, errors.Errorf("expected \"x y\", got %q", line)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return delaunay.Point{}, errors.Wrap(err, "parsing x")
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return delaunay.Point{}, errors.Wrap(err, "parsing y")
	}
	return delaunay.Point{X: x, Y: y}, nil
}

// One triangle per line, as its three vertices.
func writeText(w io.Writer, triangles []delaunay.Triangle) error {
	out := bufio.NewWriter(w)
	for _, t := range triangles {
		fmt.Fprintf(out, "%g %g %g %g %g %g\n", t.A.X, t.A.Y, t.B.X, t.B.Y, t.C.X, t.C.Y)
	}
	return errors.Wrap(out.Flush(), "writing triangles")
}

// A feature collection with one closed polygon per triangle.
func writeGeoJSON(w io.Writer, triangles []delaunay.Triangle) error {
	fc := geojson.NewFeatureCollection()
	for i, t := range triangles {
		ring := [][]float64{
			{t.A.X, t.A.Y}, {t.B.X, t.B.Y}, {t.C.X, t.C.Y}, {t.A.X, t.A.Y},
		}
		feature := geojson.NewPolygonFeature([][][]float64{ring})
		feature.SetProperty("index", i)
		fc.AddFeature(feature)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "encoding geojson")
	}
	_, err = w.Write(append(data, '\n'))
	return errors.Wrap(err, "writing geojson")
}
