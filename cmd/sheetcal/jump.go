package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sheetcal/internal/calendar"
)

type jumpOptions struct {
	calendarFlags

	dir   string
	count int
}

func newJumpCmd(rootFlags *rootFlags) *cobra.Command {
	opts := &jumpOptions{}

	cmd := &cobra.Command{
		Use:   "jump <date>",
		Short: "Print the camera dates reached by paging from a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJump(cmd, rootFlags, opts, args[0])
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.dir, "dir", "next", "Direction: next or prev")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 1, "Number of pages to move")

	return cmd
}

func runJump(cmd *cobra.Command, rootFlags *rootFlags, opts *jumpOptions, arg string) error {
	_, cfg, err := opts.build(cmd, rootFlags)
	if err != nil {
		return err
	}
	d, err := calendar.ParseDate(arg)
	if err != nil {
		return err
	}
	if opts.count < 1 {
		return fmt.Errorf("--count must be positive, got %d", opts.count)
	}

	step := calendar.JumpNext
	switch strings.ToLower(opts.dir) {
	case "next":
	case "prev":
		step = calendar.JumpPrev
	default:
		return fmt.Errorf("--dir must be next or prev, got %q", opts.dir)
	}

	d = calendar.NormalizeCameraDate(d, cfg.Style)
	out := cmd.OutOrStdout()
	for i := 0; i < opts.count; i++ {
		d = step(d, cfg)
		fmt.Fprintln(out, d)
	}
	return nil
}
