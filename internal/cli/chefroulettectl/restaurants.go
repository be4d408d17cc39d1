package chefroulettectl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chefroulette/chefroulette/internal/export"
	"github.com/chefroulette/chefroulette/internal/roulette"
)

const restaurantsPath = "/v1/restaurants"

func newListCmd(newClient func() *client) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List restaurants served by the API",
		Long: `List fetches the restaurant feed once and prints it.

Examples:
    chefroulettectl list
    chefroulettectl list --output yaml`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case "table", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("invalid --output %q: want table, json or yaml", output)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := fetchRestaurants(cmd.Context(), newClient())
			if err != nil {
				return err
			}
			if err := writeEnvelope(cmd.OutOrStdout(), envelope, output); err != nil {
				return failed("write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")
	return cmd
}

func newExportCmd(newClient func() *client) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export restaurants to a parquet file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envelope, err := fetchRestaurants(cmd.Context(), newClient())
			if err != nil {
				return err
			}
			result, err := export.EncodeRestaurantsToParquet(envelope)
			if err != nil {
				return failed("encode parquet: %w", err)
			}
			if err := os.WriteFile(out, result.Data, 0o644); err != nil {
				return failed("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d restaurants from %s to %s\n", result.RecordCount, envelope.Source, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "destination parquet file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func fetchRestaurants(ctx context.Context, c *client) (roulette.Envelope, error) {
	body, err := c.get(ctx, restaurantsPath)
	if err != nil {
		return roulette.Envelope{}, err
	}
	var envelope roulette.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return roulette.Envelope{}, failed("decode restaurants: %w", err)
	}
	return envelope, nil
}

func writeEnvelope(w io.Writer, envelope roulette.Envelope, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(envelope); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(envelope.Restaurants) == 0 {
			_, err := fmt.Fprintf(w, "No restaurants found (source %s).\n", envelope.Source)
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tCUISINE\tZONE")
		for _, r := range envelope.Restaurants {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Cuisine, r.Zone)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%d restaurants from %s\n", envelope.Count, envelope.Source)
		return err
	}
}
