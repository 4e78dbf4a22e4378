package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Faultbox/mcassets/internal/icons"
	"github.com/Faultbox/mcassets/internal/index"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// listKinds maps list kinds to catalog listings.
var listKinds = []string{"items", "blocks", "textures", "models", "fluids"}

func newListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list <items|blocks|textures|models|fluids> [pattern]",
		Short: "List catalog ids, optionally filtered by a glob pattern",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.service.Session(cmd.Context())
			if err != nil {
				return err
			}

			var ids []resource.Location
			switch args[0] {
			case "items":
				ids = sess.Catalog().ItemIDs()
			case "blocks":
				ids = sess.Catalog().BlockIDs()
			case "textures":
				ids = sess.Catalog().TextureIDs()
			case "models":
				ids = sess.Catalog().ModelLocations()
			case "fluids":
				ids = sess.AllFluidIDs()
			default:
				return fmt.Errorf("unknown kind %q, want one of %s", args[0], strings.Join(listKinds, ", "))
			}

			var match glob.Glob
			if len(args) > 1 {
				match, err = compilePattern(args[1])
				if err != nil {
					return err
				}
			}

			count := 0
			for _, id := range ids {
				if match != nil && !match.Match(id.String()) && !match.Match(id.Path) {
					continue
				}
				fmt.Println(id)
				count++
				if limit > 0 && count >= limit {
					break
				}
			}

			if match != nil {
				fmt.Fprintf(os.Stderr, "\n(%d ids matched)\n", count)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit output to N ids (0 = all)")
	return cmd
}

// compilePattern compiles a case-insensitive glob. '*' does not cross '/'.
func compilePattern(pattern string) (glob.Glob, error) {
	g, err := glob.Compile(strings.ToLower(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return g, nil
}

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search items and blocks by id or display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.service.Session(cmd.Context())
			if err != nil {
				return err
			}
			needle := strings.ToLower(args[0])

			seen := make(resource.Set)
			count := 0
			for _, ids := range [][]resource.Location{sess.Catalog().ItemIDs(), sess.Catalog().BlockIDs()} {
				for _, id := range ids {
					if seen.Has(id) {
						continue
					}
					seen.Add(id)

					name, _ := sess.DisplayName(id)
					if !strings.Contains(id.String(), needle) && !strings.Contains(strings.ToLower(name), needle) {
						continue
					}
					fmt.Printf("%-48s %s\n", id, name)
					count++
					if limit > 0 && count >= limit {
						fmt.Fprintf(os.Stderr, "\n(showing first %d matches, use -n 0 for all)\n", limit)
						return nil
					}
				}
			}

			if count == 0 {
				fmt.Fprintln(os.Stderr, "No matches found")
			} else {
				fmt.Fprintf(os.Stderr, "\n(%d matches)\n", count)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Limit results (0 = all)")
	return cmd
}

func newResolveCmd(a *app) *cobra.Command {
	var block, indexed bool
	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Show the merged model of an item or block id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.service.Session(cmd.Context())
			if err != nil {
				return err
			}
			id := resource.Parse(args[0])

			res, ok := sess.ResolveModel(id)
			if block {
				res, ok = sess.Models().ResolveBlock(id)
			}
			if !ok {
				return fmt.Errorf("no model for %s", id)
			}

			name, _ := sess.DisplayName(id)
			fmt.Printf("ID:        %s\n", id)
			fmt.Printf("Name:      %s\n", name)
			fmt.Printf("Model:     %s\n", res.ID)
			fmt.Printf("Generated: %v\n", res.Generated)
			if res.BlockModel != nil {
				fmt.Printf("Block:     %s\n", *res.BlockModel)
			}
			fmt.Printf("Elements:  %d\n", len(res.Elements))
			if res.Display != nil {
				fmt.Printf("GUI:       rotation=%v scale=%v\n", res.Display.Rotation, res.Display.Scale)
			}

			fmt.Println("Chain:")
			for _, link := range res.Chain {
				fmt.Printf("  %s\n", link)
			}

			fmt.Println("Textures:")
			printTextures(res.Textures, sess.MissingTextures(res.Textures))

			if indexed {
				textures, ok := sess.IndexedTextures(res.ID)
				if !ok {
					fmt.Println("Indexed:   none")
					return nil
				}
				fmt.Println("Indexed:")
				printTextures(textures, sess.MissingTextures(textures))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&block, "block", false, "Resolve through the blockstate")
	cmd.Flags().BoolVar(&indexed, "indexed", false, "Also show the texture map flattened at index time")
	return cmd
}

// printTextures lists a texture map by key, flagging missing textures.
func printTextures(textures map[string]resource.Location, missing []string) {
	keys := make([]string, 0, len(textures))
	for k := range textures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mark := ""
		if i := sort.SearchStrings(missing, k); i < len(missing) && missing[i] == k {
			mark = " (missing)"
		}
		fmt.Printf("  %-12s %s%s\n", k, textures[k], mark)
	}
}

func newTagsCmd(a *app) *cobra.Command {
	var of string
	cmd := &cobra.Command{
		Use:   "tags <items|blocks|fluids> [tag]",
		Short: "List tags, expand one tag, or show the tags of an id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseTagKind(args[0])
			if err != nil {
				return err
			}
			sess, err := a.service.Session(cmd.Context())
			if err != nil {
				return err
			}

			var out []resource.Location
			switch {
			case of != "":
				out = sess.Tags().TagsOf(kind, resource.Parse(of))
			case len(args) > 1:
				tag := resource.TrimTagRef(args[1])
				out = sess.Tags().Expand(kind, tag)
			default:
				out = sess.Catalog().TagIDs(kind)
			}

			for _, id := range out {
				fmt.Println(id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&of, "of", "", "Show the tags that list this id directly")
	return cmd
}

func parseTagKind(s string) (index.TagKind, error) {
	for _, k := range index.TagKinds {
		if s == string(k) || s+"s" == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown tag kind %q", s)
}

// iconKind maps the --block flag to an icon kind.
func iconKind(block bool) icons.Kind {
	if block {
		return icons.KindBlock
	}
	return icons.KindItem
}
