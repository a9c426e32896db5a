package app

import (
	"context"

	"lcr-engine/internal/seed"
)

// Seed loads deterministic synthetic holdings and deposits for a run of
// consecutive dates, provisioning the standard reference rules first.
// Existing rows for the same keys are replaced; rule rows are never
// overwritten.
func (a *App) Seed(ctx context.Context, opts SeedOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureReferenceRules(ctx); err != nil {
		return err
	}

	generator := seed.New(seed.Options{Customers: opts.Customers, Seed: opts.Seed})

	from := dateOnly(opts.From)
	for i := 0; i < opts.Days; i++ {
		day := from.AddDate(0, 0, i)

		holdings := generator.Holdings(day)
		if err := store.InsertHoldings(ctx, holdings); err != nil {
			return err
		}

		deposits := generator.Deposits(day)
		if err := store.InsertDepositBalances(ctx, deposits); err != nil {
			return err
		}

		a.Logger.Info().
			Time("as_of_date", day).
			Int("holdings", len(holdings)).
			Int("deposits", len(deposits)).
			Msg("seeded source data")
	}

	return nil
}
