package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"

	"github.com/koiblue2800/Bot-cotizaciones/internal/quote"
)

// Check fetches every configured source once and prints the live values.
func (a *App) Check(ctx context.Context) error {
	dolar, gecko := a.newFetchers()

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Family\tInstrument\tField\tValue\tObserved (UTC)")

	writeSnapshot := func(family quote.Family, snapshot quote.Snapshot, err error) {
		if err != nil {
			fmt.Fprintf(writer, "%s\t-\t-\terror: %v\t-\n", family, err)
			return
		}
		ids := lo.Keys(snapshot)
		sort.Strings(ids)
		for _, id := range ids {
			q := snapshot[id]
			fields := lo.Keys(q.Fields)
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Fprintf(
					writer,
					"%s\t%s\t%s\t%s\t%s\n",
					family,
					id,
					field,
					q.Fields[field].String(),
					q.ObservedAt.UTC().Format(time.RFC3339),
				)
			}
		}
	}

	snapshot, err := dolar.FetchQuotes(ctx)
	writeSnapshot(quote.FamilyDolar, snapshot, err)

	snapshot, err = gecko.FetchQuotes(ctx)
	writeSnapshot(quote.FamilyStablecoins, snapshot, err)

	coins, err := gecko.FetchTrending(ctx)
	if err != nil {
		fmt.Fprintf(writer, "%s\t-\t-\terror: %v\t-\n", quote.FamilyTrending, err)
	} else {
		for _, coin := range coins {
			fmt.Fprintf(writer, "%s\ttop-%d\tname\t%s (%s)\t-\n", quote.FamilyTrending, coin.Rank, coin.Name, coin.Symbol)
		}
	}

	return writer.Flush()
}
