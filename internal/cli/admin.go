package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/persistence/middleware"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/text"
)

// ListSessions prints every stored session key.
func ListSessions(ctx context.Context, store ports.SessionStore, w io.Writer) error {
	keys, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}
	fmt.Fprintln(w, "Active Sessions:")
	for _, k := range keys {
		fmt.Fprintln(w, "- "+k)
	}
	return nil
}

// InspectSession prints one session as JSON. Customer details are masked
// unless reveal is set.
func InspectSession(ctx context.Context, store ports.SessionStore, key string, reveal bool, w io.Writer) error {
	if !reveal {
		store = middleware.Chain(store, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	s, err := store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("load session '%s': %w", key, err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveSessions deletes each key, reporting every failure.
func RemoveSessions(ctx context.Context, store ports.SessionStore, keys []string, w io.Writer) error {
	var errs []error
	for _, k := range keys {
		if err := store.Delete(ctx, k); err != nil {
			errs = append(errs, fmt.Errorf("remove '%s': %w", k, err))
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", k)
	}
	return errors.Join(errs...)
}

// ListOrders prints the orders of one actor in creation order.
func ListOrders(ctx context.Context, records ports.Records, actorID int64, w io.Writer) error {
	orders, err := records.ListOrdersByActor(ctx, actorID)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Fprintf(w, "No orders for actor %d.\n", actorID)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tPRODUCT\tQTY\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			o.ID, o.Number, o.Status, productName(ctx, records, o.ProductID), o.Quantity, text.FormatTime(o.CreatedAt))
	}
	return tw.Flush()
}

func productName(ctx context.Context, products ports.ProductRepository, id int64) string {
	p, err := products.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrProductNotFound) {
		return fmt.Sprintf("#%d (deleted)", id)
	}
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return p.Name
}
