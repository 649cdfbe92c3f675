package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"billtracker/internal/core"
	"billtracker/internal/metrics"
	"billtracker/internal/services"
	"billtracker/internal/storage/memory"
)

func memoryOpener(t *testing.T) (opener, *memory.Store) {
	t.Helper()
	urls := core.DefaultURLBuilder()
	store := memory.New(urls)
	m := metrics.New()
	bills := services.NewBillService(store, nil, urls, m)
	a := &app{bills: bills, imports: services.NewImportService(bills, m)}
	return func(context.Context) (*app, error) { return a, nil }, store
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bills.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCmd(t *testing.T) {
	open, store := memoryOpener(t)
	path := writeFile(t, "Bill Number\tTitle\tPosition\nHF 1\tAn Act\tSupport\n\tNo number\tAgainst\n")

	out, err := run(t, open, "import", path)
	if err != nil {
		t.Fatalf("import error = %v, output = %s", err, out)
	}
	if !strings.Contains(out, "Imported 1 bills") || !strings.Contains(out, "Row 3: Missing required field bill_number") {
		t.Errorf("output = %q", out)
	}

	bills, _ := store.ListAll(context.Background())
	if len(bills) != 1 || bills[0].BillNumber != "HF 1" {
		t.Errorf("stored = %+v", bills)
	}

	out, err = run(t, open, "import", "--json", path)
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	var got importOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.InsertedCount != 0 || got.Skipped != 2 {
		t.Errorf("second import = %+v", got)
	}
}

func TestImportCmd_NoValidBills(t *testing.T) {
	open, _ := memoryOpener(t)
	path := writeFile(t, "bill_number,title\n,Nothing\n")

	if _, err := run(t, open, "import", path); err == nil {
		t.Fatal("import should fail when no row is valid")
	}
}

func TestImportCmd_RequiresFile(t *testing.T) {
	open, _ := memoryOpener(t)
	if _, err := run(t, open, "import"); err == nil {
		t.Fatal("import without a file should fail")
	}
	if _, err := run(t, open, "import", filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("import of a missing file should fail")
	}
}

func TestGenerateURLsAndListCmd(t *testing.T) {
	open, store := memoryOpener(t)
	ctx := context.Background()

	b, err := store.Create(ctx, core.BillData{BillNumber: "SF 7", Chamber: core.ChamberSenate, Position: core.PositionMonitor, Title: "Roads"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Update(ctx, b.ID, core.BillPatch{URL: core.Null[string](), IsPinned: core.Some(true)}); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, open, "generate-urls")
	if err != nil {
		t.Fatalf("generate-urls error = %v", err)
	}
	if !strings.Contains(out, "Generated URLs for 1 bills") || !strings.Contains(out, "ba=SF7") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, open, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "SF 7") || !strings.Contains(out, "Roads") {
		t.Errorf("list output = %q", out)
	}

	out, err = run(t, open, "list", "--json")
	if err != nil {
		t.Fatalf("list --json error = %v", err)
	}
	var bills []core.Bill
	if err := json.Unmarshal([]byte(out), &bills); err != nil || len(bills) != 1 || !bills[0].IsPinned {
		t.Errorf("list --json = %q (%v)", out, err)
	}
}

func TestMigrateCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bills.db")

	out, err := run(t, nil, "migrate", "--db", path)
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "schema version") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
