package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arloliu/dlf/compress"
	"github.com/arloliu/dlf/format"
	"github.com/arloliu/dlf/internal/logging"
	"github.com/arloliu/dlf/source"
)

// PackResult describes one compressed stream file.
type PackResult struct {
	File           string `json:"file"`
	Output         string `json:"output"`
	OriginalSize   int64  `json:"original_size"`
	CompressedSize int64  `json:"compressed_size"`
	// Savings is the size reduction in percent.
	Savings float64 `json:"savings"`
}

// NewPackCommand creates the pack command.
func NewPackCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		codec string
		keep  bool
	)

	cmd := &cobra.Command{
		Use:   "pack <run-dir>",
		Short: "Compress the stream files of a finished run",
		Long: `Compress meta.dlf, polled.dlf and event.dlf of a run directory with the
given codec. Compressed runs are read transparently by every other command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, ok := format.ParseCompression(codec)
			if !ok || ct == format.CompressionNone {
				return NewExitError(ExitUsage, fmt.Sprintf("invalid codec %q: must be zstd, s2 or lz4", codec))
			}

			return runPack(cmd, rootOpts, args[0], ct, keep)
		},
	}

	cmd.Flags().StringVar(&codec, "codec", "zstd", "compression codec (zstd|s2|lz4)")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the uncompressed files")

	return cmd
}

func runPack(cmd *cobra.Command, opts *RootOptions, dir string, ct format.CompressionType, keep bool) error {
	var results []PackResult

	for _, name := range []string{source.MetaFile, source.PolledFile, source.EventFile} {
		path := filepath.Join(dir, name)

		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return WrapExitError(ExitFailure, "read "+path, err)
		}

		out, stats, err := compress.CompressWithStats(ct, data)
		if err != nil {
			return WrapExitError(ExitFailure, "compress "+path, err)
		}

		target := path + ct.Suffix()
		if err := os.WriteFile(target, out, 0o644); err != nil { //nolint:gosec
			return WrapExitError(ExitFailure, "write "+target, err)
		}
		if !keep {
			if err := os.Remove(path); err != nil {
				return WrapExitError(ExitFailure, "remove "+path, err)
			}
		}

		opts.Logger.DebugContext(cmd.Context(), "packed stream",
			logging.KeyPath, target,
			logging.KeyBytes, stats.CompressedSize,
			"elapsed", stats.Elapsed,
		)

		results = append(results, PackResult{
			File:           name,
			Output:         filepath.Base(target),
			OriginalSize:   stats.OriginalSize,
			CompressedSize: stats.CompressedSize,
			Savings:        stats.SpaceSavings(),
		})
	}

	if len(results) == 0 {
		return NewExitError(ExitFailure, "no uncompressed stream files in "+dir)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s: %d -> %d bytes (%.1f%% saved)\n",
			r.File, r.Output, r.OriginalSize, r.CompressedSize, r.Savings)
	}

	return nil
}
