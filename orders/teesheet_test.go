package orders

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTeeSheet_Basic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tee_sheet.csv")
	content := "group_id,tee_time_s,group_size\ng1,0,4\ng2,600,3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	groups, err := LoadTeeSheet(path)
	if err != nil {
		t.Fatalf("LoadTeeSheet() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].GroupID != "g1" || groups[0].TeeTimeS != 0 || groups[0].Size != 4 {
		t.Errorf("groups[0] = %+v, want {g1 0 4}", groups[0])
	}
	if groups[1].GroupID != "g2" || groups[1].TeeTimeS != 600 || groups[1].Size != 3 {
		t.Errorf("groups[1] = %+v, want {g2 600 3}", groups[1])
	}
}

func TestLoadTeeSheet_MissingFile(t *testing.T) {
	if _, err := LoadTeeSheet("/nonexistent/tee_sheet.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}
