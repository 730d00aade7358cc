package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"yashubustudio/boqmatch/boqio"
	"yashubustudio/boqmatch/geometry"
	"yashubustudio/boqmatch/layers"
	"yashubustudio/boqmatch/reconcile"
)

type profileOutput struct {
	Source        string             `json:"source,omitempty"`
	UnitScale     geometry.UnitScale `json:"unit_scale"`
	ScaleSource   boqio.ScaleSource  `json:"scale_source"`
	Stats         geometry.Stats     `json:"stats"`
	Profiles      []layers.Snapshot  `json:"profiles"`
	BlockProfiles []layers.Snapshot  `json:"block_profiles,omitempty"`
	Warnings      []geometry.Warning `json:"warnings,omitempty"`
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile DRAWING",
		Short: "Print the per-layer geometry profiles of a drawing as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(args[0], cmd.OutOrStdout())
		},
	}
}

func runProfile(path string, w io.Writer) error {
	svcOpts, err := cfg.ServiceOptions()
	if err != nil {
		return err
	}
	drawing, err := boqio.ReadDrawing(path)
	if err != nil {
		return fmt.Errorf("read drawing: %w", err)
	}
	prof := reconcile.NewService(svcOpts, logger).Profile(drawing)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(profileOutput{
		Source:        prof.Source,
		UnitScale:     prof.Scale,
		ScaleSource:   prof.ScaleSource,
		Stats:         prof.Resolved.Stats,
		Profiles:      layers.Snapshots(prof.Layers.Layers()),
		BlockProfiles: layers.Snapshots(prof.Layers.Blocks()),
		Warnings:      prof.Resolved.Warnings,
	})
}
