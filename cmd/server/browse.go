package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dinefind/catalog"
	"dinefind/config"
	"dinefind/geo"
	"dinefind/location"
	"dinefind/logger"
	"dinefind/models"
	"dinefind/pipeline"
)

type browseOptions struct {
	query        string
	page         int
	sortDistance bool
	lat, lon     string
	locate       bool
}

func newBrowseCommand(v *viper.Viper) *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Fetch the restaurant list once and print one page of it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(v)
			if err != nil {
				return err
			}
			return browse(cmd.Context(), cmd.OutOrStdout(), cfg, log, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.query, "query", "q", "", "case-insensitive text matched against name, road, suburb and city")
	flags.IntVarP(&opts.page, "page", "p", 1, "the page to print")
	flags.BoolVar(&opts.sortDistance, "sort-distance", false, "sort by distance from the location, nearest first")
	flags.StringVar(&opts.lat, "lat", "", "latitude of the current location")
	flags.StringVar(&opts.lon, "lon", "", "longitude of the current location")
	flags.BoolVar(&opts.locate, "locate", false, "resolve the current location with the configured provider and sort by distance")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	cmd.MarkFlagsMutuallyExclusive("lat", "locate")

	return cmd
}

func browse(ctx context.Context, out io.Writer, cfg *config.Config, log logger.Logger, opts browseOptions) error {
	source, closeSource, err := newSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	cat := catalog.New(source, log)
	cat.Load(ctx)
	snap := cat.Snapshot()
	if snap.Err != nil {
		fmt.Fprintf(out, "Failed to fetch restaurants: %v\n", snap.Err)
	}

	state := pipeline.NewState()
	state.SetQuery(opts.query)

	switch {
	case opts.lat != "":
		c, err := geo.ParseCoordinate(opts.lat, opts.lon)
		if err != nil {
			return err
		}
		state.SetLocation(&c)
	case opts.locate:
		resolver := location.NewResolver(newProvider(cfg.Location), location.WithOptions(resolverOptions(cfg.Location)))
		c, err := resolver.Resolve(ctx)
		if err != nil {
			fmt.Fprintln(out, location.Message(err))
		} else {
			state.SetLocation(&c)
			opts.sortDistance = true
		}
	}
	state.SetSortByDistance(opts.sortDistance)
	state.SetPage(opts.page)

	printPage(out, state.Render(snap.Records, cfg.PageSize), state.View())
	return nil
}

func printPage(out io.Writer, res pipeline.Result, v pipeline.View) {
	query := strings.TrimSpace(v.Query)
	if query != "" {
		if res.Filtered > 0 {
			fmt.Fprintf(out, "Found %d restaurant(s) matching %q\n\n", res.Filtered, v.Query)
		} else {
			fmt.Fprintf(out, "No restaurants found matching %q. Try a different search term.\n", v.Query)
			return
		}
	}
	if res.Filtered == 0 {
		fmt.Fprintln(out, "No restaurants found. Please try again later.")
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tCUISINE\tDISTANCE\tADDRESS")
	for _, item := range res.Items {
		distance := "-"
		if item.Distance != nil {
			distance = fmt.Sprintf("%.2f km", *item.Distance)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			item.Index+1,
			item.Restaurant.ShortName(),
			models.GuessCuisine(item.Restaurant.DisplayName),
			distance,
			address(item.Restaurant.Address))
	}
	tw.Flush()

	fmt.Fprintf(out, "\nShowing %d to %d of %d restaurants", res.From, res.To, res.Filtered)
	if query != "" {
		fmt.Fprintf(out, " (filtered from %d total)", res.Total)
	}
	fmt.Fprintf(out, ", page %d of %d\n", res.Page, res.TotalPages)
}

func address(a models.Address) string {
	var parts []string
	for _, s := range []string{a.Road, a.Suburb, a.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
