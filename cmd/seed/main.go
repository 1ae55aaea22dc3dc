// seed carga el catálogo de insumos desde un CSV exportado de la hoja de bodega
// (codigo;nombre;unidad;factor;existencia_inicial) y registra la existencia inicial
// como una entrada en el pool general.
//
// Uso:
//
//	go run ./cmd/seed [-latin1] [-sqlite ruta.db] [-out seed.sql] catalogo.csv
//
// Sin -sqlite escribe un script SQL para PostgreSQL; con -sqlite carga directamente el archivo.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/infrastructure/sqlite"
	"github.com/jhoicas/labstock-api/pkg/config"
)

// catalogRow un insumo del catálogo con su existencia inicial en unidades de empaque.
type catalogRow struct {
	Code    string
	Name    string
	Unit    string
	Factor  decimal.Decimal
	Opening decimal.Decimal
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (exportación de Excel)")
	sqlitePath := flag.String("sqlite", "", "cargar directamente en este archivo SQLite")
	outPath := flag.String("out", "", "archivo SQL de salida (por defecto stdout)")
	flag.Parse()

	csvPath := "catalogo.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readCatalog(f, *latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	at := time.Now().UTC()

	if *sqlitePath != "" {
		if err := loadSQLite(context.Background(), *sqlitePath, rows, at); err != nil {
			fmt.Fprintf(os.Stderr, "Cargar SQLite: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cargados %d insumos en %s\n", len(rows), *sqlitePath)
		return
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	if err := writeSQL(out, rows, at); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if *outPath != "" {
		fmt.Printf("Generado %s: %d insumos\n", *outPath, len(rows))
	}
}

// readCatalog lee filas separadas por ';'. Acepta coma decimal y omite encabezado y comentarios (#).
func readCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []catalogRow
	seen := make(map[string]bool)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "codigo") {
			continue
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("línea %d: se esperaban al menos 4 columnas, hay %d", line, len(rec))
		}
		row := catalogRow{
			Code: strings.TrimSpace(rec[0]),
			Name: strings.TrimSpace(rec[1]),
			Unit: strings.TrimSpace(rec[2]),
		}
		if row.Code == "" || row.Name == "" {
			return nil, fmt.Errorf("línea %d: código y nombre son obligatorios", line)
		}
		if seen[row.Code] {
			return nil, fmt.Errorf("línea %d: código %s duplicado", line, row.Code)
		}
		seen[row.Code] = true
		if row.Factor, err = parseQuantity(rec[3]); err != nil || !row.Factor.IsPositive() {
			return nil, fmt.Errorf("línea %d: factor inválido %q", line, rec[3])
		}
		row.Opening = decimal.Zero
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			if row.Opening, err = parseQuantity(rec[4]); err != nil || row.Opening.IsNegative() {
				return nil, fmt.Errorf("línea %d: existencia inicial inválida %q", line, rec[4])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseQuantity acepta "1.250,5" y "1250.5".
func parseQuantity(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

// openingID ID estable de la entrada inicial: volver a sembrar no duplica el lote.
func openingID(code string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("labstock:opening:"+code)).String()
}

func (r catalogRow) item(at time.Time) *entity.Item {
	status := entity.ItemStatusAvailable
	if r.Opening.IsZero() {
		status = entity.ItemStatusDepleted
	}
	return &entity.Item{
		ID:              r.Code,
		Code:            r.Code,
		Name:            r.Name,
		UnitMeasure:     r.Unit,
		PackagingFactor: r.Factor,
		OnHand:          r.Opening,
		Status:          status,
		UpdatedAt:       at,
	}
}

func (r catalogRow) opening(at time.Time) *entity.Movement {
	return &entity.Movement{
		ID:          openingID(r.Code),
		ItemID:      r.Code,
		LocationID:  entity.GeneralPool,
		Type:        entity.MovementTypeEntry,
		Quantity:    r.Opening,
		Unit:        r.Unit,
		OccurredAt:  at,
		DocumentRef: "INVENTARIO-INICIAL",
		Responsible: "seed",
	}
}

func writeSQL(w io.Writer, rows []catalogRow, at time.Time) error {
	ts := at.Format(time.RFC3339Nano)
	var b strings.Builder
	b.WriteString("-- Catálogo de insumos y existencias iniciales\n")
	b.WriteString("-- Generado por cmd/seed\n\n")
	for _, r := range rows {
		it := r.item(at)
		fmt.Fprintf(&b, "INSERT INTO items (id, code, name, unit_measure, packaging_factor, on_hand, status, updated_at)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s, %s, '%s', '%s')\n",
			escapeSQL(it.ID), escapeSQL(it.Code), escapeSQL(it.Name), escapeSQL(it.UnitMeasure),
			it.PackagingFactor.String(), it.OnHand.String(), it.Status, ts)
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure, packaging_factor = EXCLUDED.packaging_factor;\n")
		if r.Opening.IsPositive() {
			m := r.opening(at)
			fmt.Fprintf(&b, "INSERT INTO stock_movements (id, item_id, location_id, type, quantity, unit, occurred_at, document_ref, responsible)\n")
			fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s, '%s', '%s', '%s', '%s')\n",
				m.ID, escapeSQL(m.ItemID), m.LocationID, m.Type, m.Quantity.String(),
				escapeSQL(m.Unit), ts, m.DocumentRef, m.Responsible)
			b.WriteString("ON CONFLICT (id) DO NOTHING;\n")
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// loadSQLite aplica el esquema y guarda ítems y entradas iniciales; las entradas ya sembradas se omiten.
func loadSQLite(ctx context.Context, path string, rows []catalogRow, at time.Time) error {
	db, err := sqlite.Open(ctx, config.SQLiteConfig{Path: path})
	if err != nil {
		return err
	}
	defer db.Close()
	if err := sqlite.Migrate(ctx, db); err != nil {
		return err
	}
	items := sqlite.NewItemRepository(db)
	movements := sqlite.NewMovementRepository(db)
	for _, r := range rows {
		if err := items.Save(ctx, r.item(at)); err != nil {
			return err
		}
		if !r.Opening.IsPositive() {
			continue
		}
		_, err := movements.GetByID(ctx, openingID(r.Code))
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := movements.CreateBatch(ctx, []*entity.Movement{r.opening(at)}); err != nil {
			return fmt.Errorf("entrada inicial %s: %w", r.Code, err)
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
