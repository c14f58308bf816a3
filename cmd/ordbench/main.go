/*
Command ordbench exercises the ordtree package from the command line:
it bulk-loads synthetic trees, times the set operations, and prints
shape statistics. Handy for eyeballing the effect of node size and
load factor on tree geometry.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
	"github.com/npillmayer/ordtree"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	flagCount      int
	flagNodeSize   int
	flagLoadFactor float64
	flagOverlap    float64
	flagSeed       int64
)

func main() {
	root := &cobra.Command{
		Use:   "ordbench",
		Short: "benchmark and inspect ordered-tree operations",
	}
	root.PersistentFlags().IntVarP(&flagCount, "count", "n", 100000, "number of keys per tree")
	root.PersistentFlags().IntVar(&flagNodeSize, "node-size", 32, "maximum node size (even, >= 4)")
	root.PersistentFlags().Float64Var(&flagLoadFactor, "load-factor", ordtree.DefaultLoadFactor, "bulk-load fill degree")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 1, "random seed")
	//
	load := &cobra.Command{
		Use:   "load",
		Short: "bulk-load a tree and report its shape",
		RunE:  runLoad,
	}
	setops := &cobra.Command{
		Use:   "setops",
		Short: "time union, intersection and difference of two trees",
		RunE:  runSetops,
	}
	setops.Flags().Float64Var(&flagOverlap, "overlap", 0.5, "fraction of keys shared by both trees")
	dot := &cobra.Command{
		Use:   "dot",
		Short: "print a small sample tree in Graphviz format",
		RunE:  runDot,
	}
	root.AddCommand(load, setops, dot)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("ordbench: %v", err))
		os.Exit(1)
	}
}

func sortedSample(rng *rand.Rand, n, keySpace int) ([]int, []int) {
	seen := make(map[int]bool, n)
	for len(seen) < n {
		seen[rng.Intn(keySpace)] = true
	}
	keys := make([]int, 0, n)
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	vals := make([]int, n)
	for i, k := range keys {
		vals[i] = k
	}
	return keys, vals
}

func runLoad(cmd *cobra.Command, args []string) error {
	rng := rand.New(rand.NewSource(flagSeed))
	keys, vals := sortedSample(rng, flagCount, flagCount*4)
	//
	start := time.Now()
	tree, err := ordtree.BulkLoad(keys, vals, flagNodeSize, cmpInt,
		ordtree.WithLoadFactor(flagLoadFactor))
	if err != nil {
		return err
	}
	bulkDur := time.Since(start)
	if err := tree.Check(); err != nil {
		return err
	}
	//
	start = time.Now()
	oneByOne := ordtree.New[int, int](cmpInt, flagNodeSize)
	series := make([]float64, 0, 100)
	batch := len(keys)/100 + 1
	for i, k := range keys {
		oneByOne.Insert(k, vals[i])
		if i%batch == 0 {
			series = append(series, float64(oneByOne.Height()))
		}
	}
	insDur := time.Since(start)
	//
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Method", "Keys", "Height", "Duration"})
	table.Append([]string{"bulk load", fmt.Sprint(tree.Len()), fmt.Sprint(tree.Height()),
		bulkDur.String()})
	table.Append([]string{"insert loop", fmt.Sprint(oneByOne.Len()), fmt.Sprint(oneByOne.Height()),
		insDur.String()})
	table.Render()
	//
	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Caption("tree height during incremental insertion")))
	speedup := float64(insDur) / float64(bulkDur)
	color.New(color.Bold).Printf("bulk loading is %.1fx faster than repeated insertion\n", speedup)
	return nil
}

func runSetops(cmd *cobra.Command, args []string) error {
	if flagOverlap < 0 || flagOverlap > 1 {
		return fmt.Errorf("overlap must lie in [0,1], have %g", flagOverlap)
	}
	rng := rand.New(rand.NewSource(flagSeed))
	shared := int(float64(flagCount) * flagOverlap)
	common, _ := sortedSample(rng, shared, flagCount*8)
	onlyA, _ := sortedSample(rng, flagCount-shared, flagCount*8)
	onlyB, _ := sortedSample(rng, flagCount-shared, flagCount*8)
	//
	a, err := buildTree(append(append([]int{}, common...), onlyA...))
	if err != nil {
		return err
	}
	b, err := buildTree(append(append([]int{}, common...), onlyB...))
	if err != nil {
		return err
	}
	//
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Operation", "Result keys", "Duration"})
	//
	start := time.Now()
	u, err := ordtree.Union(a, b, func(_ int, va, _ int) (int, bool) { return va, true })
	if err != nil {
		return err
	}
	table.Append([]string{"union", fmt.Sprint(u.Len()), time.Since(start).String()})
	//
	start = time.Now()
	isect, err := ordtree.Intersect(a, b, func(_ int, va, _ int) int { return va })
	if err != nil {
		return err
	}
	table.Append([]string{"intersect", fmt.Sprint(isect.Len()), time.Since(start).String()})
	//
	start = time.Now()
	diff, err := ordtree.Subtract(a, b)
	if err != nil {
		return err
	}
	table.Append([]string{"subtract", fmt.Sprint(diff.Len()), time.Since(start).String()})
	table.Render()
	//
	for _, tr := range []*ordtree.Tree[int, int]{u, isect, diff} {
		if err := tr.Check(); err != nil {
			return err
		}
	}
	color.New(color.FgGreen).Printf("all results pass the structure check (a=%d, b=%d, shared=%d)\n",
		a.Len(), b.Len(), shared)
	return nil
}

func buildTree(keys []int) (*ordtree.Tree[int, int], error) {
	sort.Ints(keys)
	dedup := keys[:0]
	for i, k := range keys {
		if i == 0 || k != keys[i-1] {
			dedup = append(dedup, k)
		}
	}
	vals := make([]int, len(dedup))
	copy(vals, dedup)
	return ordtree.BulkLoad(dedup, vals, flagNodeSize, cmpInt,
		ordtree.WithLoadFactor(flagLoadFactor))
}

func runDot(cmd *cobra.Command, args []string) error {
	keys := make([]int, 30)
	vals := make([]int, 30)
	for i := range keys {
		keys[i] = i
		vals[i] = i * i
	}
	tree, err := ordtree.BulkLoad(keys, vals, 4, cmpInt)
	if err != nil {
		return err
	}
	tree.Clone() // mark shared nodes so the dump shows both stylings
	ordtree.Tree2Dot(tree, os.Stdout)
	return nil
}

func cmpInt(a, b int) int {
	return a - b
}
