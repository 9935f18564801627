package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/modules/crm/infrastructure/persistence"
	"github.com/iota-uz/crm-sdk/modules/crm/services"
	"github.com/iota-uz/crm-sdk/pkg/composables"
	"github.com/iota-uz/crm-sdk/pkg/configuration"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
)

type importOptions struct {
	entity  string
	file    string
	ownerID uuid.UUID
}

func newImportCmd() *cobra.Command {
	var opts importOptions
	var owner string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import companies or contacts from CSV through duplicate reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.entity, "entity", "", "Entity type: company or contact (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Input CSV path (required)")
	cmd.Flags().StringVar(&owner, "owner", "", "Owner user UUID for imported records (required)")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("owner")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(strings.TrimSpace(owner))
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --owner: %w", err))
		}
		opts.ownerID = id
		switch opts.entity {
		case "company", "contact":
		default:
			return withCode(exitUsage, fmt.Errorf("invalid --entity: %q", opts.entity))
		}
		return nil
	}

	return cmd
}

type importSummary struct {
	Rows    int `json:"rows"`
	Created int `json:"created"`
	Linked  int `json:"linked"`
	Pending int `json:"pending"`
	Failed  int `json:"failed"`
}

func runImport(ctx context.Context, opts importOptions) error {
	rows, header, err := readCSV(opts.file)
	if err != nil {
		return withCode(exitUsage, err)
	}

	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	conf := configuration.Use()
	svc := services.NewReconciliationService(
		persistence.NewCompanyRepository(),
		persistence.NewContactRepository(),
		persistence.NewDuplicateRequestRepository(),
		eventbus.NewEventPublisher(conf.Logger()),
		conf.SimilarityThreshold,
	)
	principal := user.Principal{ID: opts.ownerID, Level: user.LevelSenior}

	var summary importSummary
	for _, row := range rows {
		summary.Rows++
		record := mapRow(header, row)

		var res *services.BlindCreateResult
		switch opts.entity {
		case "company":
			res, err = svc.BlindCreateCompany(ctx, services.CompanyInput{
				Name:    record["name"],
				Email:   record["email"],
				Phone:   record["phone"],
				Website: record["website"],
			}, principal)
		case "contact":
			companyID, parseErr := uuid.Parse(record["company_id"])
			if parseErr != nil {
				summary.Failed++
				continue
			}
			res, err = svc.BlindCreateContact(ctx, services.ContactInput{
				CompanyID: companyID,
				Name:      record["name"],
				Email:     optField(record, "email"),
				Phone:     optField(record, "phone"),
				Position:  optField(record, "position"),
				Notes:     optField(record, "notes"),
			}, principal)
		}
		if err != nil {
			summary.Failed++
			continue
		}

		switch res.Status {
		case services.BlindCreated:
			summary.Created++
		case services.BlindLinked:
			summary.Linked++
		case services.BlindPending:
			summary.Pending++
		}
	}

	if summary.Failed > 0 && summary.Failed == summary.Rows {
		_ = writeJSONLine(map[string]any{"status": "failed", "summary": summary})
		return withCode(exitValidation, fmt.Errorf("all %d rows failed", summary.Rows))
	}
	return writeJSONLine(map[string]any{"status": "ok", "summary": summary})
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

func mapRow(header []string, row []string) map[string]string {
	out := make(map[string]string, len(header))
	for i, key := range header {
		if i < len(row) {
			out[key] = strings.TrimSpace(row[i])
		}
	}
	return out
}

func optField(record map[string]string, key string) *string {
	v, ok := record[key]
	if !ok || v == "" {
		return nil
	}
	return &v
}
