package delaunay

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/osuushi/delaunay/internal"
	"github.com/osuushi/delaunay/spatial"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TileConfig controls TriangulateTiled.
type TileConfig struct {
	Config `yaml:",inline"`

	// Tiles is the number of vertical strips to cut the input into. Strips that
	// would hold fewer than two sites are folded into a neighbour, so fewer may
	// end up being used. Default: 4.
	Tiles int `yaml:"tiles"`

	// Workers is how many strips are triangulated at once. Zero means
	// runtime.NumCPU().
	Workers int `yaml:"workers"`
}

func DefaultTileConfig() TileConfig {
	return TileConfig{Config: DefaultConfig(), Tiles: 4}
}

func (c TileConfig) Validate() error {
	err := c.Config.Validate()
	var tileErr error
	if c.Tiles < 1 {
		tileErr = multierr.Append(tileErr, errors.Errorf("Tiles must be >= 1, got %d", c.Tiles))
	}
	if c.Workers < 0 {
		tileErr = multierr.Append(tileErr, errors.Errorf("Workers must be >= 0, got %d", c.Workers))
	}
	if tileErr != nil {
		err = multierr.Append(err, internal.NewPreconditionError(errors.Wrap(tileErr, "invalid tile config")))
	}
	return err
}

// Triangulate points by cutting them into vertical strips, triangulating the
// strips in parallel, and merging what they could not settle on their own. The
// result is the same set of triangles Triangulate gives, in a different order.
//
// Each strip is split against its cell, the slab of the plane between its cuts
// (the outer cells are unbounded). Triangles whose circumdisks sit inside the
// cell are final. The remaining unsafe parts are merged in a single merge
// mode build, which reports the rest.
func TriangulateTiled(ctx context.Context, points []Point, cfg TileConfig) (result []Triangle, err error) {
	defer func() {
		recoveredErr := internal.HandlePanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sorted := append([]Point(nil), points...)
	for i, p := range sorted {
		if !p.IsFinite() {
			return nil, internal.NewPreconditionError(errors.Errorf("point %d has a non-finite coordinate %v", i, p))
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	partitions := stripPartitions(sorted, cfg.Tiles)
	if len(partitions) == 1 {
		return internal.Build(internal.Points(sorted), cfg.Config).CollectTriangles(), nil
	}

	var cells spatial.GlobalIndex[spatial.Partition]
	cells.BulkLoad(partitions)
	strips := routeToStrips(&cells, sorted)
	for i := range partitions {
		partitions[i].Count = len(strips[i])
		partitions[i].Content = contentOf(strips[i])
	}
	cells.BulkLoad(partitions)
	for p := range cells.All() {
		log.Debug("tile", zap.Stringer("partition", p))
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	safeTriangles := make([][]Triangle, len(strips))
	unsafeParts := make(internal.Partials, len(strips))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, strip := range strips {
		cell := cells.At(i).Cell
		g.Go(func() (err error) {
			defer func() {
				recoveredErr := internal.HandlePanicRecover(recover())
				if recoveredErr != nil {
					err = errors.WithMessagef(recoveredErr, "tile %d", i)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			tri := internal.Build(internal.Points(strip), cfg.Config)
			safe, unsafe := tri.Split(cell, cfg.Config)
			safeTriangles[i] = safe.CollectTriangles()
			unsafeParts[i] = unsafe
			log.Debug("triangulated tile",
				zap.Int("tile", i),
				zap.Int("sites", len(strip)),
				zap.Int("safe_triangles", len(safeTriangles[i])),
				zap.Int("unsafe_sites", unsafe.Size()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, triangles := range safeTriangles {
		result = append(result, triangles...)
	}
	safeCount := len(result)
	merged := internal.Build(unsafeParts, cfg.Config)
	result = append(result, merged.CollectTriangles()...)
	log.Debug("merged tiles",
		zap.Int("tiles", len(strips)),
		zap.Int("merged_sites", merged.Size()),
		zap.Int("safe_triangles", safeCount),
		zap.Int("merged_triangles", len(result)-safeCount),
	)
	return result, nil
}

// Cut sorted points into at most tiles vertical strips of about equal size.
// Cuts fall only between distinct x values, and never leave a strip with fewer
// than two sites. Cells are closed, so a site on a cut lies in both cells next
// to it; it belongs to the right one.
func stripPartitions(sorted []Point, tiles int) []spatial.Partition {
	n := len(sorted)
	bounds := []float64{math.Inf(-1)}
	prev := 0
	for i := 1; i < tiles; i++ {
		k := n * i / tiles
		for k > 0 && k < n && sorted[k-1].X == sorted[k].X {
			k++
		}
		if k-prev < 2 || n-k < 2 {
			continue
		}
		bounds = append(bounds, sorted[k].X)
		prev = k
	}
	bounds = append(bounds, math.Inf(1))

	partitions := make([]spatial.Partition, len(bounds)-1)
	for i := range partitions {
		partitions[i] = spatial.Partition{
			ID:      i,
			Cell:    spatial.NewRectangle(bounds[i], math.Inf(-1), bounds[i+1], math.Inf(1)),
			Content: spatial.EmptyRectangle(),
		}
	}
	return partitions
}

// Assign each site to the rightmost cell containing it, by joining the sites
// against the cells. Strips come out sorted, since sorted is.
func routeToStrips(cells *spatial.GlobalIndex[spatial.Partition], sorted []Point) [][]Point {
	sites := make([]spatial.Point, len(sorted))
	for i, p := range sorted {
		sites[i] = spatial.Point{X: p.X, Y: p.Y}
	}
	var siteIndex spatial.GlobalIndex[spatial.Point]
	siteIndex.BulkLoad(sites)

	owners := make(map[spatial.Point]int, len(sorted))
	spatial.SpatialJoin(&siteIndex, cells, spatial.Collector2Func[spatial.Point, spatial.Partition](func(p spatial.Point, c spatial.Partition) {
		if owner, ok := owners[p]; !ok || c.ID > owner {
			owners[p] = c.ID
		}
	}))

	strips := make([][]Point, cells.Size())
	for _, p := range sorted {
		owner := owners[spatial.Point{X: p.X, Y: p.Y}]
		strips[owner] = append(strips[owner], p)
	}
	return strips
}

func contentOf(points []Point) spatial.Rectangle {
	content := spatial.EmptyRectangle()
	for _, p := range points {
		content = content.Union(spatial.NewRectangle(p.X, p.Y, p.X, p.Y))
	}
	return content
}
