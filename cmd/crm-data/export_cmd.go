package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type exportOptions struct {
	outputDir string
}

func newExportCmd() *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export companies and contacts from DB into CSV files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.outputDir, "output", "", "Output directory (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(ctx context.Context, opts exportOptions) error {
	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return withCode(exitDB, err)
	}

	companies, err := exportCompanies(ctx, pool, filepath.Join(opts.outputDir, "companies.csv"))
	if err != nil {
		return withCode(exitDB, err)
	}
	contacts, err := exportContacts(ctx, pool, filepath.Join(opts.outputDir, "contacts.csv"))
	if err != nil {
		return withCode(exitDB, err)
	}

	return writeJSONLine(map[string]any{
		"status":    "ok",
		"companies": companies,
		"contacts":  contacts,
		"output":    opts.outputDir,
	})
}

func exportCompanies(ctx context.Context, pool *pgxpool.Pool, path string) (int, error) {
	rows, err := pool.Query(ctx, `
        SELECT id, name, email, phone, website, owner_id
        FROM companies
        ORDER BY name`)
	if err != nil {
		return 0, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	w, f, err := newCSVFile(path, []string{"id", "name", "email", "phone", "website", "owner_id"})
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	count := 0
	for rows.Next() {
		var id, name, email, phone, website, ownerID string
		if err := rows.Scan(&id, &name, &email, &phone, &website, &ownerID); err != nil {
			return count, fmt.Errorf("scan company: %w", err)
		}
		if err := w.Write([]string{id, name, email, phone, website, ownerID}); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}
	w.Flush()
	return count, w.Error()
}

func exportContacts(ctx context.Context, pool *pgxpool.Pool, path string) (int, error) {
	rows, err := pool.Query(ctx, `
        SELECT id, company_id, owner_id, name, status,
               COALESCE(email, ''), COALESCE(phone, ''), COALESCE(position, ''), COALESCE(notes, '')
        FROM contacts
        ORDER BY name`)
	if err != nil {
		return 0, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	w, f, err := newCSVFile(path, []string{"id", "company_id", "owner_id", "name", "status", "email", "phone", "position", "notes"})
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	count := 0
	for rows.Next() {
		var id, companyID, ownerID, name, status, email, phone, position, notes string
		if err := rows.Scan(&id, &companyID, &ownerID, &name, &status, &email, &phone, &position, &notes); err != nil {
			return count, fmt.Errorf("scan contact: %w", err)
		}
		if err := w.Write([]string{id, companyID, ownerID, name, status, email, phone, position, notes}); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}
	w.Flush()
	return count, w.Error()
}

func newCSVFile(path string, header []string) (*csv.Writer, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return w, f, nil
}
