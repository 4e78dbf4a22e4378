package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Faultbox/mcassets/pkg/archive"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show archive and catalog information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := printArchiveInfo(a.cfg.Data.Archive); err != nil {
				fmt.Printf("Archive: %s (unavailable: %v)\n", a.cfg.Data.Archive, err)
			}

			sess, err := a.service.Session(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.Err(); err != nil {
				fmt.Printf("\nWarning: %v\n", err)
			}

			fmt.Println()
			fmt.Printf("Vanilla: %s\n", sess.Catalog().Vanilla().Stats())
			fmt.Printf("Project: %s\n", sess.Catalog().Project().Stats())
			return nil
		},
	}
}

func printArchiveInfo(path string) error {
	arch, err := archive.Open(path)
	if err != nil {
		return err
	}

	files := arch.List()

	// Count by extension
	type extStat struct {
		ext   string
		count int
		size  uint64
	}
	byExt := make(map[string]*extStat)
	var totalSize uint64
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if ext == "" {
			ext = "(no ext)"
		}
		st, ok := byExt[ext]
		if !ok {
			st = &extStat{ext: ext}
			byExt[ext] = st
		}
		st.count++
		if e, ok := arch.Stat(f); ok {
			st.size += e.UncompressedSize
			totalSize += e.UncompressedSize
		}
	}

	fmt.Printf("Archive: %s\n", path)
	fmt.Printf("Files:   %d\n", len(files))
	fmt.Printf("Size:    %s (%s unpacked)\n", humanize.Bytes(uint64(arch.Size())), humanize.Bytes(totalSize))
	fmt.Println()
	fmt.Println("Files by type:")

	stats := make([]*extStat, 0, len(byExt))
	for _, st := range byExt {
		stats = append(stats, st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].ext < stats[j].ext
	})

	for _, s := range stats {
		if s.count >= 10 {
			fmt.Printf("  %-10s %8s  %s\n", s.ext, humanize.Comma(int64(s.count)), humanize.Bytes(s.size))
		}
	}
	return nil
}
