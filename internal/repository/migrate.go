package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	TableDocuments  = "aip_documents"
	TableTotals     = "aip_totals"
	TableSourceRefs = "aip_source_refs"
)

var (
	documentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "content_hash", Type: field.TypeString, Unique: true},
		{Name: "source_path", Type: field.TypeString, Default: ""},
		{Name: "lgu_name", Type: field.TypeString},
		{Name: "lgu_type", Type: field.TypeString},
		{Name: "lgu_confidence", Type: field.TypeString},
		{Name: "fiscal_year", Type: field.TypeInt},
		{Name: "document_type", Type: field.TypeString},
		{Name: "page_count", Type: field.TypeInt},
		{Name: "quality_score", Type: field.TypeInt},
		{Name: "artifact_json", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	documentsTable = &schema.Table{
		Name:       TableDocuments,
		Columns:    documentsColumns,
		PrimaryKey: []*schema.Column{documentsColumns[0]},
	}

	totalsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "aip_id", Type: field.TypeUUID},
		{Name: "source_label", Type: field.TypeString},
		{Name: "fiscal_year", Type: field.TypeInt},
		{Name: "value", Type: field.TypeOther, SchemaType: map[string]string{
			dialect.Postgres: "numeric(20,2)",
			dialect.SQLite:   "text",
		}},
		{Name: "currency", Type: field.TypeString},
		{Name: "page_no", Type: field.TypeInt},
		{Name: "evidence_text", Type: field.TypeString},
	}
	totalsTable = &schema.Table{
		Name:       TableTotals,
		Columns:    totalsColumns,
		PrimaryKey: []*schema.Column{totalsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "aip_totals_aip_documents_totals",
			Columns:    []*schema.Column{totalsColumns[1]},
			RefColumns: []*schema.Column{documentsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{{
			Name:    "aiptotal_aip_id_source_label",
			Unique:  true,
			Columns: []*schema.Column{totalsColumns[1], totalsColumns[2]},
		}},
	}

	sourceRefsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "anchor_hash", Type: field.TypeString, Size: 40},
		{Name: "aip_id", Type: field.TypeUUID},
		{Name: "subject", Type: field.TypeString},
		{Name: "page", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "evidence_text", Type: field.TypeString},
		{Name: "row_index", Type: field.TypeInt, Nullable: true},
		{Name: "table_index", Type: field.TypeInt, Nullable: true},
		{Name: "row_signature", Type: field.TypeString, Nullable: true},
		{Name: "bbox_json", Type: field.TypeString, Nullable: true},
	}
	sourceRefsTable = &schema.Table{
		Name:       TableSourceRefs,
		Columns:    sourceRefsColumns,
		PrimaryKey: []*schema.Column{sourceRefsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "aip_source_refs_aip_documents_refs",
			Columns:    []*schema.Column{sourceRefsColumns[2]},
			RefColumns: []*schema.Column{documentsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{{
			Name:    "aipsourceref_aip_id_anchor_hash",
			Unique:  true,
			Columns: []*schema.Column{sourceRefsColumns[2], sourceRefsColumns[1]},
		}},
	}

	// Tables lists every table in creation order.
	Tables = []*schema.Table{documentsTable, totalsTable, sourceRefsTable}
)

func init() {
	totalsTable.ForeignKeys[0].RefTable = documentsTable
	sourceRefsTable.ForeignKeys[0].RefTable = documentsTable
}

// Migrate creates missing tables, columns and indexes. It only appends.
func (d *DB) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(d.drv)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	d.logger.Info("repository.migrate.ok", "dialect", d.dialect, "tables", len(Tables))
	return nil
}
