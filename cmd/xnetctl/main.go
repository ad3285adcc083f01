// Command xnetctl inspects, queries, and converts xnet graph containers
// from the command line.
//
// Grounded on the teacher's cmd/cli (flag-package driven, no cobra —
// the teacher's own primary CLI doesn't use one either) but
// non-interactive: each invocation runs one subcommand and exits,
// matching the one-shot style of the teacher's cmd/benchmark-* family
// more than cmd/cli's REPL loop, since xnetctl is meant to be scripted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dd0wney/xnetgraph/pkg/analysis"
	"github.com/dd0wney/xnetgraph/pkg/blobstore"
	"github.com/dd0wney/xnetgraph/pkg/bxnet"
	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/logging"
	"github.com/dd0wney/xnetgraph/pkg/pools"
	"github.com/dd0wney/xnetgraph/pkg/query"
	"github.com/dd0wney/xnetgraph/pkg/validation"
	"github.com/dd0wney/xnetgraph/pkg/xnet"
)

var log = logging.NewDefaultLogger()

// cfg holds defaults loaded from -config, consulted by run* subcommands
// wherever a flag default of zero should instead fall back to a
// configured value (pkg/validation.DefaultOr* helpers do the merging).
var cfg = &Config{}

func main() {
	args := os.Args[1:]
	if len(args) >= 2 && args[0] == "-config" {
		loaded, err := loadConfig(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "xnetctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		args = args[2:]
	}
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "stat":
		err = runStat(args[1:])
	case "convert":
		err = runConvert(args[1:])
	case "query":
		err = runQuery(args[1:])
	case "compact":
		err = runCompact(args[1:])
	case "leiden":
		err = runLeiden(args[1:])
	case "dimension":
		err = runDimension(args[1:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "xnetctl: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("command failed", logging.String("subcommand", args[0]), logging.Error(err))
		fmt.Fprintf(os.Stderr, "xnetctl: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `xnetctl - inspect and manipulate xnet graph containers

Usage:
  xnetctl [-config FILE] stat      -in PATH
  xnetctl [-config FILE] convert   -in PATH -out PATH
  xnetctl [-config FILE] query     -in PATH -scope node|edge -select EXPR
  xnetctl [-config FILE] compact   -in PATH -out PATH [-node-id-attr NAME] [-edge-id-attr NAME]
  xnetctl [-config FILE] leiden    -in PATH [-resolution F] [-attr NAME] [-max-levels N] [-max-passes N]
  xnetctl [-config FILE] dimension -in PATH -node N [-method forward|backward|central|least_squares] [-order N] [-max-level N]

PATH may be a local file path (extension selects .xnet/.bxnet/.zxnet/
.sxnet) or an s3://bucket/key URI (bxnet/zxnet/sxnet only). -config FILE
loads YAML defaults for blobstore credentials and leiden/dimension
parameters.`)
}

// blobstoreOptions builds blobstore.Options from -config's blobstore
// section, falling back to the ambient AWS credential chain when unset.
func blobstoreOptions() []blobstore.Option {
	opts := []blobstore.Option{blobstore.WithLogger(log)}
	if cfg.Blobstore.Region != "" {
		opts = append(opts, blobstore.WithRegion(cfg.Blobstore.Region))
	}
	if cfg.Blobstore.AccessKeyID != "" {
		opts = append(opts, blobstore.WithStaticCredentials(
			cfg.Blobstore.AccessKeyID, cfg.Blobstore.SecretAccessKey, cfg.Blobstore.SessionToken,
		))
	}
	return opts
}

// loadGraph reads a graph from a local path or an s3:// URI, dispatching
// on file extension / BGZF magic per §4.7.
func loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	if strings.HasPrefix(path, "s3://") {
		loc, err := blobstore.ParseLocation(path)
		if err != nil {
			return nil, err
		}
		store, err := blobstore.New(ctx, blobstoreOptions()...)
		if err != nil {
			return nil, err
		}
		return store.Get(ctx, loc)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ferrors.IOError("loadGraph", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".xnet"):
		return xnet.Read(f)
	case strings.HasSuffix(path, ".zxnet"):
		return bxnet.ReadZXNet(f)
	case strings.HasSuffix(path, ".sxnet"):
		return bxnet.ReadSXNet(f)
	case strings.HasSuffix(path, ".bxnet"):
		if cfg.IO.Mmap {
			f.Close()
			return bxnet.ReadFileMmap(path)
		}
		return bxnet.Read(f)
	default:
		return nil, ferrors.InvalidArgument("loadGraph", fmt.Sprintf("unrecognized extension: %s", path))
	}
}

// saveGraph writes g to a local path or an s3:// URI, dispatching on
// file extension.
func saveGraph(ctx context.Context, path string, g *graph.Graph) error {
	if strings.HasPrefix(path, "s3://") {
		loc, err := blobstore.ParseLocation(path)
		if err != nil {
			return err
		}
		store, err := blobstore.New(ctx, blobstoreOptions()...)
		if err != nil {
			return err
		}
		switch {
		case strings.HasSuffix(loc.Key, ".zxnet"):
			return store.PutZXNet(ctx, loc, g, 6)
		case strings.HasSuffix(loc.Key, ".sxnet"):
			return store.PutSXNet(ctx, loc, g)
		default:
			return store.PutBXNet(ctx, loc, g)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return ferrors.IOError("saveGraph", err)
	}
	defer f.Close()

	switch {
	case strings.HasSuffix(path, ".xnet"):
		return xnet.Write(f, g, xnet.WriteOptions{})
	case strings.HasSuffix(path, ".zxnet"):
		return bxnet.WriteZXNet(f, g, 6)
	case strings.HasSuffix(path, ".sxnet"):
		return bxnet.WriteSXNet(f, g)
	case strings.HasSuffix(path, ".bxnet"):
		return bxnet.Write(f, g)
	default:
		return ferrors.InvalidArgument("saveGraph", fmt.Sprintf("unrecognized extension: %s", path))
	}
}

func runStat(args []string) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return ferrors.InvalidArgument("stat", "-in is required")
	}

	ctx := context.Background()
	g, err := loadGraph(ctx, *in)
	if err != nil {
		return err
	}

	fmt.Printf("directed:      %v\n", g.Directed())
	fmt.Printf("nodes:         %d (capacity %d)\n", g.NodeCount(), g.NodeCapacity())
	fmt.Printf("edges:         %d (capacity %d)\n", g.EdgeCount(), g.EdgeCapacity())
	printAttrs(g, graph.ScopeNode, "node attributes")
	printAttrs(g, graph.ScopeEdge, "edge attributes")
	printAttrs(g, graph.ScopeGraph, "graph attributes")
	bps := pools.BytePoolStats()
	fmt.Printf("byte pool:     %d hits, %d misses\n", bps.Hits, bps.Misses)
	ups := pools.Uint64PoolStats()
	fmt.Printf("uint64 pool:   %d hits, %d misses\n", ups.Hits, ups.Misses)
	return nil
}

func printAttrs(g *graph.Graph, scope graph.Scope, label string) {
	names := g.AttributeNames(scope)
	fmt.Printf("%s (%d):\n", label, len(names))
	for _, name := range names {
		attr, _ := g.GetAttribute(scope, name)
		fmt.Printf("  %-24s type=%-12s dim=%-3d version=%d\n", name, typeName(attr.BaseType()), attr.Dimension(), attr.Version())
	}
}

func typeName(bt graph.BaseType) string {
	switch bt {
	case graph.TypeString:
		return "string"
	case graph.TypeBool:
		return "bool"
	case graph.TypeF32:
		return "f32"
	case graph.TypeF64:
		return "f64"
	case graph.TypeI32:
		return "i32"
	case graph.TypeU32:
		return "u32"
	case graph.TypeI64:
		return "i64"
	case graph.TypeU64:
		return "u64"
	case graph.TypeCategory:
		return "category"
	case graph.TypeMultiCategory:
		return "multi_category"
	case graph.TypeOpaqueData:
		return "opaque_data"
	case graph.TypeHostShadow:
		return "host_shadow"
	default:
		return "unknown"
	}
}

func runConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	out := fs.String("out", "", "output graph path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return ferrors.InvalidArgument("convert", "-in and -out are required")
	}

	ctx := context.Background()
	g, err := loadGraph(ctx, *in)
	if err != nil {
		return err
	}
	if err := saveGraph(ctx, *out, g); err != nil {
		return err
	}
	fmt.Printf("converted %s -> %s (%d nodes, %d edges)\n", *in, *out, g.NodeCount(), g.EdgeCount())
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	scope := fs.String("scope", "node", "selection scope: node|edge")
	selectExpr := fs.String("select", "", "selector expression (§4.6 grammar)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *selectExpr == "" {
		return ferrors.InvalidArgument("query", "-in and -select are required")
	}

	g, err := loadGraph(context.Background(), *in)
	if err != nil {
		return err
	}

	var sel *query.Selector
	switch *scope {
	case "node":
		sel, err = query.SelectNodes(g, *selectExpr)
	case "edge":
		sel, err = query.SelectEdges(g, *selectExpr)
	default:
		return ferrors.InvalidArgument("query", "-scope must be node or edge")
	}
	if err != nil {
		var ferr *ferrors.GraphError
		if errors.As(err, &ferr) && ferr.Kind == ferrors.KindQueryError {
			log.Error("query failed", logging.QueryOffset(ferr.Offset), logging.Error(err))
		}
		return err
	}

	fmt.Printf("matched %d %s(s):\n", sel.Count(), *scope)
	for _, idx := range sel.Indices {
		fmt.Println(idx)
	}
	return nil
}

func runCompact(args []string) error {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	out := fs.String("out", "", "output graph path")
	nodeIDAttr := fs.String("node-id-attr", "", "optional attribute to store original node indices")
	edgeIDAttr := fs.String("edge-id-attr", "", "optional attribute to store original edge indices")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return ferrors.InvalidArgument("compact", "-in and -out are required")
	}

	ctx := context.Background()
	g, err := loadGraph(ctx, *in)
	if err != nil {
		return err
	}
	compacted, err := g.Compact(*nodeIDAttr, *edgeIDAttr)
	if err != nil {
		return err
	}
	if err := saveGraph(ctx, *out, compacted); err != nil {
		return err
	}
	fmt.Printf("compacted %s -> %s (%d nodes, %d edges, no holes)\n", *in, *out, compacted.NodeCount(), compacted.EdgeCount())
	return nil
}

func runLeiden(args []string) error {
	fs := flag.NewFlagSet("leiden", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	weightAttr := fs.String("weight-attr", "", "edge attribute to weight by (unit weight if empty)")
	attr := fs.String("attr", "community", "output node attribute for community ids")
	resolution := fs.Float64("resolution", validation.DefaultOr(cfg.Leiden.Resolution, 1.0), "Leiden resolution parameter")
	seed := fs.Uint64("seed", 0, "RNG seed")
	maxLevels := fs.Int("max-levels", validation.DefaultOrInt(cfg.Leiden.MaxLevels, 10), "maximum aggregation levels")
	maxPasses := fs.Int("max-passes", validation.DefaultOrInt(cfg.Leiden.MaxPasses, 10), "maximum local-move passes per level")
	budget := fs.Int("budget", validation.DefaultOrInt(cfg.Leiden.Budget, 4096), "node-visit budget per Step call")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return ferrors.InvalidArgument("leiden", "-in is required")
	}

	g, err := loadGraph(context.Background(), *in)
	if err != nil {
		return err
	}

	sess, err := analysis.NewSession(g, analysis.Config{
		EdgeWeightAttribute: *weightAttr,
		Resolution:          *resolution,
		Seed:                uint32(*seed),
		MaxLevels:           *maxLevels,
		MaxPasses:           *maxPasses,
		CommunityAttribute:  *attr,
	})
	if err != nil {
		return err
	}

	for sess.Phase() != analysis.PhaseDone && sess.Phase() != analysis.PhaseFailed {
		sess.Step(*budget)
	}
	if sess.Phase() == analysis.PhaseFailed {
		return ferrors.InvalidArgument("leiden", "session reached PhaseFailed")
	}
	if err := sess.Finalize(g); err != nil {
		return err
	}
	fmt.Printf("modularity=%.6f community-attribute=%s\n", sess.Modularity(), *attr)
	log.Info("leiden session finalized", logging.Modularity(sess.Modularity()), logging.String("community-attribute", *attr))
	return nil
}

func runDimension(args []string) error {
	fs := flag.NewFlagSet("dimension", flag.ExitOnError)
	in := fs.String("in", "", "input graph path")
	node := fs.Uint64("node", 0, "node index to measure from")
	method := fs.String("method", validation.DefaultOr(cfg.Dimension.Method, "least_squares"), "forward|backward|central|least_squares")
	order := fs.Int("order", validation.DefaultOrInt(cfg.Dimension.Order, 2), "derivative/window order")
	maxLevel := fs.Int("max-level", validation.DefaultOrInt(cfg.Dimension.MaxLevel, 5), "maximum BFS radius")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return ferrors.InvalidArgument("dimension", "-in is required")
	}

	g, err := loadGraph(context.Background(), *in)
	if err != nil {
		return err
	}

	m, err := parseMethod(*method)
	if err != nil {
		return err
	}
	cfg := analysis.DimensionConfig{Method: m, Order: *order, MaxLevel: *maxLevel, Radius: *maxLevel}
	dim, err := analysis.EstimateNodeDimension(g, *node, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("node %d dimension (method=%s order=%d max_level=%d): %.6f\n", *node, *method, *order, *maxLevel, dim)
	return nil
}

func parseMethod(s string) (analysis.Method, error) {
	switch s {
	case "forward":
		return analysis.MethodForwardDifference, nil
	case "backward":
		return analysis.MethodBackwardDifference, nil
	case "central":
		return analysis.MethodCentralDifference, nil
	case "least_squares":
		return analysis.MethodLeastSquares, nil
	default:
		return 0, ferrors.InvalidArgument("dimension", fmt.Sprintf("unknown method %q", s))
	}
}
