package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastygo/dsp-console/domain"
)

func newLocationsCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "locations",
		Aliases: []string{"location", "loc"},
		Short:   "List monitored locations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := st.app.api.ListLocations(cmd.Context())
			if err != nil {
				return err
			}
			return st.printer().locations(items)
		},
	}
	cmd.AddCommand(
		newLocationGetCommand(st),
		newLocationCreateCommand(st),
		newLocationUpdateCommand(st),
		newLocationDeleteCommand(st),
	)
	return protected(cmd)
}

func newLocationGetCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}
			loc, err := st.app.api.GetLocation(cmd.Context(), id)
			if err != nil {
				return err
			}
			return st.printer().locations([]domain.Location{*loc})
		},
	})
}

// locationFlags binds the editable location fields; only flags the operator
// set end up in the request.
type locationFlags struct {
	name, address, kind, taxID string
	lat, lng                   float64
	active                     bool
}

func (f *locationFlags) bind(cmd *cobra.Command, withActive bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "location name")
	cmd.Flags().StringVar(&f.address, "address", "", "street address")
	cmd.Flags().StringVar(&f.kind, "type", "", "location type (shop, cafe, restaurant, ...)")
	cmd.Flags().StringVar(&f.taxID, "tax-id", "", "taxpayer id")
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude")
	if withActive {
		cmd.Flags().BoolVar(&f.active, "active", true, "whether the location is active")
	}
}

func (f *locationFlags) input(cmd *cobra.Command) domain.LocationInput {
	var in domain.LocationInput
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = &f.name
	}
	if changed("address") {
		in.Address = &f.address
	}
	if changed("type") {
		in.LocationType = &f.kind
	}
	if changed("tax-id") {
		in.TaxID = &f.taxID
	}
	if changed("lat") {
		in.Latitude = &f.lat
	}
	if changed("lng") {
		in.Longitude = &f.lng
	}
	if changed("active") {
		in.IsActive = &f.active
	}
	return in
}

func newLocationCreateCommand(st *state) *cobra.Command {
	var flags locationFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := st.app.api.CreateLocation(cmd.Context(), flags.input(cmd))
			if err != nil {
				return err
			}
			return st.printer().locations([]domain.Location{*loc})
		},
	}
	flags.bind(cmd, false)
	return protected(cmd)
}

func newLocationUpdateCommand(st *state) *cobra.Command {
	var flags locationFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}
			loc, err := st.app.api.UpdateLocation(cmd.Context(), id, flags.input(cmd))
			if err != nil {
				return err
			}
			return st.printer().locations([]domain.Location{*loc})
		},
	}
	flags.bind(cmd, true)
	return protected(cmd)
}

func newLocationDeleteCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "location")
			if err != nil {
				return err
			}
			if err := st.app.api.DeleteLocation(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(st.stdout(), "Location %d deleted\n", id)
			return nil
		},
	})
}
