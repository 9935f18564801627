package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/company"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/contact"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/team"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/modules/crm/infrastructure/persistence"
	"github.com/iota-uz/crm-sdk/pkg/composables"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed a demo org hierarchy with companies, contacts and deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

type seedSummary struct {
	Teams     int `json:"teams"`
	Users     int `json:"users"`
	Companies int `json:"companies"`
	Contacts  int `json:"contacts"`
	Deals     int `json:"deals"`
}

func runSeed(ctx context.Context) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	teams := persistence.NewTeamRepository()
	users := persistence.NewUserRepository()
	companies := persistence.NewCompanyRepository()
	contacts := persistence.NewContactRepository()
	deals := persistence.NewDealRepository()

	summary, err := composables.InTxResult(ctx, func(txCtx context.Context) (seedSummary, error) {
		var out seedSummary

		root, err := users.Create(txCtx, user.User{Name: "Dana Whitfield", Role: "ceo", Level: user.LevelOrgWide})
		if err != nil {
			return out, err
		}
		out.Users++

		sales, err := teams.Create(txCtx, team.Team{Name: "Sales", LeaderID: &root.ID})
		if err != nil {
			return out, err
		}
		out.Teams++

		manager, err := users.Create(txCtx, user.User{
			Name: "Victor Hayes", Role: "sales_manager", Level: user.LevelManager,
			ManagerID: &root.ID, TeamID: &sales.ID,
		})
		if err != nil {
			return out, err
		}
		out.Users++

		reps := []user.User{
			{Name: "Maria Lopez", Role: "account_exec", Level: user.LevelSenior, ManagerID: &manager.ID, TeamID: &sales.ID},
			{Name: "Roberto Silva", Role: "account_exec", Level: user.LevelSenior, ManagerID: &manager.ID, TeamID: &sales.ID},
			{Name: "Jon Reed", Role: "sdr", Level: user.LevelJunior, ManagerID: &manager.ID, TeamID: &sales.ID},
		}
		owners := make([]user.User, 0, len(reps))
		for _, rep := range reps {
			created, err := users.Create(txCtx, rep)
			if err != nil {
				return out, err
			}
			owners = append(owners, created)
			out.Users++
		}

		acme, err := companies.Create(txCtx, company.Company{
			Name: "Acme Corporation", Email: "sales@acme.test", OwnerID: owners[0].ID,
		})
		if err != nil {
			return out, err
		}
		out.Companies++

		email := "cto@acme.test"
		primary, err := contacts.Create(txCtx, contact.Contact{
			CompanyID: acme.ID, OwnerID: owners[0].ID, Name: "Elena Vasquez",
			Status: contact.StatusCustomer, Email: &email,
		})
		if err != nil {
			return out, err
		}
		out.Contacts++

		if _, err := deals.Create(txCtx, deal.Deal{
			Name: "Acme renewal", Amount: decimal.NewFromInt(48000), Stage: deal.StageOpen,
			CompanyID: &acme.ID, ContactID: &primary.ID, OwnerID: owners[0].ID,
		}); err != nil {
			return out, err
		}
		out.Deals++

		return out, nil
	})
	if err != nil {
		return withCode(exitDB, fmt.Errorf("seed failed: %w", err))
	}

	return writeJSONLine(map[string]any{"status": "ok", "seeded": summary})
}
