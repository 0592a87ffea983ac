package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/heshamdawsha976/sen2/internal/client"
	"github.com/heshamdawsha976/sen2/internal/order"
)

var (
	reportAddr   string
	reportOrders bool
	reportStatus string
	reportSearch string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print order analytics from a running server",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportAddr, "addr", "http://localhost:8080", "base URL of the order API")
	reportCmd.Flags().BoolVar(&reportOrders, "orders", false, "also list orders")
	reportCmd.Flags().StringVar(&reportStatus, "status", "", "only list orders with this status")
	reportCmd.Flags().StringVar(&reportSearch, "search", "", "only list orders matching this text")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	hooks := client.New(client.NewAPI(reportAddr))
	out := cmd.OutOrStdout()

	analytics, err := hooks.Analytics(cmd.Context())
	if err != nil {
		return err
	}
	if err := writeSummary(out, analytics); err != nil {
		return err
	}
	if err := writeDaily(out, analytics.DailyOrders); err != nil {
		return err
	}

	if !reportOrders {
		return nil
	}

	filter := order.ListFilter{Search: reportSearch}
	if reportStatus != "" {
		status, err := order.ParseStatus(reportStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}

	orders, err := hooks.Orders(cmd.Context(), filter)
	if err != nil {
		return err
	}
	return writeOrders(out, orders)
}

func writeSummary(w io.Writer, a *order.Analytics) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Orders", "Revenue")

	rows := [][]string{
		{"Total", strconv.Itoa(a.Total), a.TotalRevenue.String()},
		{"Today", strconv.Itoa(a.TodayOrders), a.TodayRevenue.String()},
		{"Last 7 days", strconv.Itoa(a.WeekOrders), a.WeekRevenue.String()},
		{"This month", strconv.Itoa(a.MonthOrders), a.MonthRevenue.String()},
	}
	for _, sc := range a.StatusDistribution {
		rows = append(rows, []string{sc.Status.String(), strconv.Itoa(sc.Value), ""})
	}
	rows = append(rows,
		[]string{"Conversion rate", fmt.Sprintf("%.1f%%", a.ConversionRate), ""},
		[]string{"Cancellation rate", fmt.Sprintf("%.1f%%", a.CancellationRate), ""},
	)

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}
	return table.Render()
}

func writeDaily(w io.Writer, days []order.DailyStat) error {
	table := tablewriter.NewWriter(w)
	table.Header("Date", "Orders", "Delivered", "Revenue")
	for _, d := range days {
		if err := table.Append([]string{d.Date, strconv.Itoa(d.Orders), strconv.Itoa(d.Delivered), d.Revenue.String()}); err != nil {
			return fmt.Errorf("failed to render daily breakdown: %w", err)
		}
	}
	return table.Render()
}

func writeOrders(w io.Writer, orders []order.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Customer", "Phone", "Status", "Created")
	for _, o := range orders {
		row := []string{o.ID.String(), o.CustomerName, o.CustomerPhone, o.Status.String(), o.CreatedAt.Format("2006-01-02 15:04")}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render orders: %w", err)
		}
	}
	return table.Render()
}
