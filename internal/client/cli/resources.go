package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/mehmet-raif33/ulasfleet/internal/client/api"
	"github.com/mehmet-raif33/ulasfleet/internal/client/fleet"
)

// listLimit keeps the terminal listings readable; the services paginate.
const listLimit = 20

func printPageFooter(out io.Writer, p *api.Pagination) {
	if p == nil {
		return
	}
	fmt.Fprintf(out, "page %d/%d (%d total)\n", p.Page, p.TotalPages, p.Total)
}

// Vehicles lists the first page of the vehicle fleet.
func (a *App) Vehicles(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := a.vehicles.List(ctx, fleet.ListParams{Limit: listLimit})
	if err != nil {
		fmt.Fprintln(a.out, "Vehicles failed:", err)
		return err
	}
	for _, v := range page.Items {
		fmt.Fprintf(a.out, "%-12s %s %s (%d) [%s]\n", v.Plate, v.Brand, v.Model, v.Year, v.Status)
	}
	printPageFooter(a.out, page.Pagination)
	return nil
}

// Personnel lists the first page of staff records.
func (a *App) Personnel(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := a.personnel.List(ctx, fleet.ListParams{Limit: listLimit})
	if err != nil {
		fmt.Fprintln(a.out, "Personnel failed:", err)
		return err
	}
	for _, p := range page.Items {
		fmt.Fprintf(a.out, "%-24s <%s> %s\n", p.Name, p.Email, p.Position)
	}
	printPageFooter(a.out, page.Pagination)
	return nil
}

// Transactions lists the first page of income and expense entries.
func (a *App) Transactions(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := a.transactions.List(ctx, fleet.ListParams{Limit: listLimit})
	if err != nil {
		fmt.Fprintln(a.out, "Transactions failed:", err)
		return err
	}
	for _, tx := range page.Items {
		fmt.Fprintf(a.out, "%s %10.2f %s\n", tx.Date.Format("2006-01-02"), tx.Amount, tx.Description)
	}
	printPageFooter(a.out, page.Pagination)
	return nil
}

// Categories lists the transaction categories.
func (a *App) Categories(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := a.categories.List(ctx, fleet.ListParams{Limit: listLimit})
	if err != nil {
		fmt.Fprintln(a.out, "Categories failed:", err)
		return err
	}
	for _, c := range page.Items {
		fmt.Fprintf(a.out, "%-24s [%s]\n", c.Name, c.Type)
	}
	printPageFooter(a.out, page.Pagination)
	return nil
}

// Activities lists the latest audit trail entries.
func (a *App) Activities(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page, err := a.activities.List(ctx, fleet.ListParams{Limit: listLimit})
	if err != nil {
		fmt.Fprintln(a.out, "Activities failed:", err)
		return err
	}
	for _, act := range page.Items {
		fmt.Fprintf(a.out, "%s %-16s %s\n", act.CreatedAt.Format("2006-01-02 15:04"), act.Type, act.Description)
	}
	printPageFooter(a.out, page.Pagination)
	return nil
}

// Health probes the data service without authentication.
func (a *App) Health(ctx context.Context) error {
	st, err := a.health.Check(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Health check failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Service status:", st.Status)
	return nil
}
