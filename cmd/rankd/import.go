package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/viant/ranking/object"
	"github.com/viant/ranking/store"
)

const importBatch = 500

func importCmd(configPath *string) *cobra.Command {
	var dataset, format string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import vectors into a dataset",
		Long: `Import vectors from a text file of "vector<TAB>id<TAB>v1,v2,..." lines
or from a binary object stream.

Examples:
  rankd import points.tsv --dataset points
  rankd import points.robj --dataset points --format binary`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := importVectors(cmd.Context(), rt.store, dataset, format, f)
			if err != nil {
				return err
			}
			rt.logger.Info("import finished", zap.String("dataset", dataset), zap.Int("count", n))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d objects into %s\n", n, dataset)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "default", "target dataset")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "input format (text, binary)")
	return cmd
}

// importVectors streams vectors from r into the store in batches.
func importVectors(ctx context.Context, s store.Store, dataset, format string, r io.Reader) (int, error) {
	var source func(yield func(*object.Vector, error) bool)
	switch format {
	case "text":
		source = func(yield func(*object.Vector, error) bool) {
			for obj, err := range object.ReadText(r, object.DefaultRegistry()) {
				if err != nil {
					yield(nil, err)
					return
				}
				v, ok := obj.(*object.Vector)
				if !ok {
					yield(nil, fmt.Errorf("%w: %T is not a vector", object.ErrIncompatible, obj))
					return
				}
				if !yield(v, nil) {
					return
				}
			}
		}
	case "binary":
		dec, err := object.NewDecoder(r)
		if err != nil {
			return 0, err
		}
		source = dec.All()
	default:
		return 0, fmt.Errorf("unsupported format %q", format)
	}

	total := 0
	batch := make([]*object.Vector, 0, importBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.Add(ctx, dataset, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}
	for v, err := range source {
		if err != nil {
			return total, err
		}
		batch = append(batch, v)
		if len(batch) == importBatch {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}
