package cli

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/dsp-console/domain"
)

func newEmployeesCommand(st *state) *cobra.Command {
	var locationID int64
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"employee", "emp"},
		Short:   "List employees",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				id, err := parseID(args[0], "employee")
				if err != nil {
					return err
				}
				emp, err := st.app.api.GetEmployee(cmd.Context(), id)
				if err != nil {
					return err
				}
				return st.printer().employees([]domain.Employee{*emp})
			}
			items, err := st.app.api.ListEmployees(cmd.Context(), locationID)
			if err != nil {
				return err
			}
			return st.printer().employees(items)
		},
	}
	cmd.Flags().Int64Var(&locationID, "location", 0, "only employees of this location")
	return protected(cmd)
}
