// Command delaunay triangulates points read from stdin, one "x y" pair per
// line, and answers nearest neighbour queries over them.
package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/logrusorgru/aurora"
	"github.com/osuushi/delaunay"
	"github.com/osuushi/delaunay/advanced"
	"github.com/osuushi/delaunay/spatial"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

var (
	app        = kingpin.New("delaunay", "Delaunay triangulation of planar point sets.")
	verbose    = app.Flag("verbose", "Log build events to stderr.").Short('v').Bool()
	configPath = app.Flag("config", "YAML file with tile and build settings.").ExistingFile()

	triangulateCmd = app.Command("triangulate", "Triangulate points from stdin.").Default()
	tiles          = triangulateCmd.Flag("tiles", "Vertical strips to split the input into (overrides the config).").Int()
	workers        = triangulateCmd.Flag("workers", "Strips triangulated at once (overrides the config).").Int()
	format         = triangulateCmd.Flag("format", "Output format.").Default("text").Enum("text", "geojson")
	pngPath        = triangulateCmd.Flag("png", "Also draw the triangulation to this PNG file.").String()
	scale          = triangulateCmd.Flag("scale", "Pixels per unit for --png.").Default("1").Float64()

	knnCmd = app.Command("knn", "Print the k input points nearest to a query point.")
	knnK   = knnCmd.Flag("k", "Number of neighbours.").Default("5").Int()
	knnX   = knnCmd.Flag("x", "Query x.").Required().Float64()
	knnY   = knnCmd.Flag("y", "Query y.").Required().Float64()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := loadConfig(*configPath)
	app.FatalIfError(err, "")
	if *verbose {
		logger, err := zap.NewDevelopment()
		app.FatalIfError(err, "creating logger")
		defer logger.Sync()
		cfg.Logger = logger
	}

	points, err := readPoints(os.Stdin)
	app.FatalIfError(err, "reading points")
	fmt.Fprintf(os.Stderr, "Read %s points\n", aurora.Cyan(len(points)))

	switch command {
	case triangulateCmd.FullCommand():
		if *tiles > 0 {
			cfg.Tiles = *tiles
		}
		if *workers > 0 {
			cfg.Workers = *workers
		}
		app.FatalIfError(runTriangulate(points, cfg), "triangulating")
	case knnCmd.FullCommand():
		app.FatalIfError(runKNN(points, *knnX, *knnY, *knnK), "knn")
	}
}

func loadConfig(path string) (delaunay.TileConfig, error) {
	cfg := delaunay.DefaultTileConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

func runTriangulate(points []delaunay.Point, cfg delaunay.TileConfig) error {
	triangles, err := delaunay.TriangulateTiled(context.Background(), points, cfg)
	if err != nil {
		return err
	}
	switch *format {
	case "geojson":
		err = writeGeoJSON(os.Stdout, triangles)
	default:
		err = writeText(os.Stdout, triangles)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, summary(len(triangles), cfg.Tiles))

	if *pngPath != "" {
		tri, err := advanced.Build(points, cfg.Config)
		if err != nil {
			return err
		}
		if err := tri.DrawPNG(*pngPath, *scale); err != nil {
			return errors.Wrap(err, "drawing png")
		}
		fmt.Fprintf(os.Stderr, "Drew %v to %s\n", tri, *pngPath)
	}
	return nil
}

// Strips with fewer than two sites are folded into their neighbours, so the
// tile count is an upper bound.
func summary(triangles, tiles int) string {
	return fmt.Sprintf("%s %s triangles using up to %s tiles",
		aurora.Green("Wrote"), aurora.Cyan(triangles), aurora.Cyan(tiles))
}

func runKNN(points []delaunay.Point, x, y float64, k int) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return errors.Errorf("query point (%v, %v) is not finite", x, y)
	}
	shapes := make([]spatial.Point, len(points))
	for i, p := range points {
		shapes[i] = spatial.Point{X: p.X, Y: p.Y}
	}
	var idx spatial.GlobalIndex[spatial.Point]
	idx.BulkLoad(shapes)
	found := idx.KNN(x, y, k, spatial.Collector2Func[spatial.Point, float64](func(p spatial.Point, d float64) {
		fmt.Printf("%g %g %g\n", p.X, p.Y, d)
	}))
	if found < k {
		fmt.Fprintf(os.Stderr, "%s only %d points\n", aurora.Yellow("Found"), found)
	}
	return nil
}
