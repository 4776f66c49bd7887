package cli

import (
	"github.com/spf13/cobra"

	"github.com/fastygo/dsp-console/domain"
)

func newCamerasCommand(st *state) *cobra.Command {
	var locationID int64
	cmd := &cobra.Command{
		Use:     "cameras",
		Aliases: []string{"camera", "cam"},
		Short:   "List cameras",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := st.app.api.ListCameras(cmd.Context(), locationID)
			if err != nil {
				return err
			}
			return st.printer().cameras(items)
		},
	}
	cmd.Flags().Int64Var(&locationID, "location", 0, "only cameras of this location")
	cmd.AddCommand(
		newCameraStatusCommand(st),
		newCameraConnectCommand(st),
		newCameraAnalyzeCommand(st),
	)
	return protected(cmd)
}

func newCameraStatusCommand(st *state) *cobra.Command {
	return protected(&cobra.Command{
		Use:   "status <id>",
		Short: "Show the live status of a camera",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "camera")
			if err != nil {
				return err
			}
			doc, err := st.app.api.CameraStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			return st.printer().payload(doc)
		},
	})
}

func newCameraConnectCommand(st *state) *cobra.Command {
	var conn domain.CameraConnection
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Connect an IP camera by address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := st.app.api.ConnectCamera(cmd.Context(), conn)
			if err != nil {
				return err
			}
			return st.printer().payload(doc)
		},
	}
	cmd.Flags().StringVar(&conn.IPAddress, "ip", "", "camera IP address")
	cmd.Flags().IntVar(&conn.Port, "port", domain.DefaultCameraPort, "camera port")
	cmd.Flags().StringVar(&conn.Username, "user", "", "camera username")
	cmd.Flags().StringVar(&conn.Password, "password", "", "camera password")
	_ = cmd.MarkFlagRequired("ip")
	return protected(cmd)
}

func newCameraAnalyzeCommand(st *state) *cobra.Command {
	var duration int
	cmd := &cobra.Command{
		Use:   "analyze <id>",
		Short: "Start an analysis job on a camera stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "camera")
			if err != nil {
				return err
			}
			doc, err := st.app.api.AnalyzeCamera(cmd.Context(), id, duration)
			if err != nil {
				return err
			}
			return st.printer().payload(doc)
		},
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "analysis length in seconds (backend default when 0)")
	return protected(cmd)
}
