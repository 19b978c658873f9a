package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ordstat/domain/record"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestJSONRecordSource(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a record array", func(t *testing.T) {
		path := writeFile(t, "records.json", `[
			{"repository_id": "serde", "file_path": "src/lib.rs", "declaration_kind": "struct",
			 "capability_names": ["Debug", "Clone"], "line_number": 4},
			{"repository_id": "tokio", "file_path": "src/main.rs", "declaration_kind": "enum",
			 "capability_names": ["Serialize"], "line_number": 9}
		]`)

		records, err := NewJSONRecordSource(path).Records(ctx)
		if err != nil {
			t.Fatalf("records: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("records = %d, want 2", len(records))
		}
		if records[0].Capabilities[0] != "Debug" || records[0].Capabilities[1] != "Clone" {
			t.Fatalf("capability order lost: %v", records[0].Capabilities)
		}
		if records[1].Kind != record.KindEnum {
			t.Fatalf("kind = %s, want enum", records[1].Kind)
		}
	})

	t.Run("content defects pass through for downstream diagnostics", func(t *testing.T) {
		path := writeFile(t, "records.json", `[{"repository_id": "", "capability_names": []}]`)
		records, err := NewJSONRecordSource(path).Records(ctx)
		if err != nil {
			t.Fatalf("shape is valid, decoding must succeed: %v", err)
		}
		if err := records[0].Validate(); err == nil {
			t.Fatal("the defective record must fail validation downstream")
		}
	})

	t.Run("malformed json fails", func(t *testing.T) {
		path := writeFile(t, "records.json", `{not json`)
		if _, err := NewJSONRecordSource(path).Records(ctx); err == nil {
			t.Fatal("expected a decode error")
		}
	})
}

func TestCSVRecordSource(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "records.csv",
		"repository_id,file_path,declaration_kind,line_number,capability_names\n"+
			"serde,src/lib.rs,struct,4,\"Debug, Clone, PartialEq\"\n"+
			"tokio,src/main.rs,enum,9,Serialize\n")

	records, err := NewCSVRecordSource(path).Records(ctx)
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	want := []string{"Debug", "Clone", "PartialEq"}
	for i, name := range want {
		if records[0].Capabilities[i] != name {
			t.Fatalf("capabilities = %v, want %v", records[0].Capabilities, want)
		}
	}
	if records[0].Line != 4 {
		t.Fatalf("line = %d, want 4", records[0].Line)
	}
}

func TestJSONDomainClassifier(t *testing.T) {
	ctx := context.Background()

	t.Run("reads the mapping", func(t *testing.T) {
		path := writeFile(t, "domains.json", `{"serde": "serialization", "tokio": "async"}`)
		domains, err := NewJSONDomainClassifier(path).Classify(ctx)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if domains["serde"] != "serialization" || domains["tokio"] != "async" {
			t.Fatalf("mapping = %v", domains)
		}
	})

	t.Run("empty path yields empty mapping", func(t *testing.T) {
		domains, err := NewJSONDomainClassifier("").Classify(ctx)
		if err != nil {
			t.Fatalf("classify: %v", err)
		}
		if len(domains) != 0 {
			t.Fatalf("mapping = %v, want empty", domains)
		}
	})
}
