package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fastygo/dsp-console/domain"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

type printer struct {
	out    io.Writer
	format string
}

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// payload prints an opaque backend document as indented JSON.
func (p printer) payload(doc domain.Payload) error {
	if len(doc) == 0 {
		fmt.Fprintln(p.out, "{}")
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		_, werr := p.out.Write(doc)
		return werr
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(p.out)
	return err
}

func (p printer) table(header table.Row, rows []table.Row) {
	tw := table.NewWriter()
	tw.SetOutputMirror(p.out)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.Render()
}

func (p printer) identity(id *domain.Identity, sess domain.Session) error {
	if p.format == outputJSON {
		return p.json(struct {
			User      *domain.Identity `json:"user"`
			ExpiresAt domain.Timestamp `json:"expires_at"`
		}{id, domain.Timestamp{Time: sess.ExpiresAt}})
	}
	expires := "-"
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt.Local().Format("2006-01-02 15:04:05")
	}
	p.table(table.Row{"ID", "Username", "Name", "Email", "Role", "Expires"}, []table.Row{
		{id.ID, id.Username, id.FullName, id.Email, id.Role, expires},
	})
	return nil
}

func (p printer) locations(items []domain.Location) error {
	if p.format == outputJSON {
		return p.json(items)
	}
	rows := make([]table.Row, 0, len(items))
	for _, l := range items {
		rows = append(rows, table.Row{l.ID, l.Name, l.Address, l.LocationType, dash(l.TaxID), activeLabel(l.IsActive)})
	}
	p.table(table.Row{"ID", "Name", "Address", "Type", "Tax ID", "Status"}, rows)
	return nil
}

func (p printer) cameras(items []domain.Camera) error {
	if p.format == outputJSON {
		return p.json(items)
	}
	rows := make([]table.Row, 0, len(items))
	for _, c := range items {
		rows = append(rows, table.Row{c.ID, c.LocationID, c.Name, c.IPAddress + ":" + strconv.Itoa(c.Port), dash(c.CameraType), activeLabel(c.IsActive)})
	}
	p.table(table.Row{"ID", "Location", "Name", "Address", "Type", "Status"}, rows)
	return nil
}

func (p printer) employees(items []domain.Employee) error {
	if p.format == outputJSON {
		return p.json(items)
	}
	rows := make([]table.Row, 0, len(items))
	for _, e := range items {
		registered := "no"
		if e.IsRegistered {
			registered = "yes"
		}
		rows = append(rows, table.Row{e.ID, e.LocationID, e.FullName, dash(e.Position), dash(e.Phone), registered, activeLabel(e.IsActive)})
	}
	p.table(table.Row{"ID", "Location", "Name", "Position", "Phone", "Registered", "Status"}, rows)
	return nil
}

func (p printer) analytics(items []domain.Analytics) error {
	if p.format == outputJSON {
		return p.json(items)
	}
	rows := make([]table.Row, 0, len(items))
	for _, a := range items {
		rows = append(rows, table.Row{
			a.Date.Format("2006-01-02"),
			a.RealCustomers,
			money(a.ReportedRevenue),
			money(a.EstimatedRevenue),
			money(a.AverageCheck),
			fmt.Sprintf("%.1f%%", a.DiscrepancyPercentage),
		})
	}
	p.table(table.Row{"Date", "Customers", "Reported", "Estimated", "Avg check", "Discrepancy"}, rows)
	return nil
}

func (p printer) risk(r *domain.RiskScore) error {
	if p.format == outputJSON {
		return p.json(r)
	}
	p.table(table.Row{"Location", "Date", "Score", "Level", "Unregistered", "Revenue gap"}, []table.Row{
		{r.LocationID, r.Date.Format("2006-01-02"), fmt.Sprintf("%.2f", r.RiskScore), r.RiskLevel, r.UnregisteredEmployees, money(r.RevenueDiscrepancy)},
	})
	return nil
}

func (p printer) dashboard(d *domain.Dashboard) error {
	if p.format == outputJSON {
		return p.json(d)
	}
	p.table(table.Row{"Metric", "Value"}, []table.Row{
		{"Locations", fmt.Sprintf("%d (%d active)", d.Locations, d.ActiveLocations)},
		{"Cameras", fmt.Sprintf("%d (%d active)", d.Cameras, d.ActiveCameras)},
		{"Employees", fmt.Sprintf("%d (%d unregistered)", d.Employees, d.Unregistered)},
		{"Refreshed", d.RefreshedAt.Local().Format("15:04:05")},
	})
	return nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}
