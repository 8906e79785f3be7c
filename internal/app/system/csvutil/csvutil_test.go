package csvutil

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"
)

func TestSafeField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Acme", "Acme"},
		{"=SUM(A1)", "'=SUM(A1)"},
		{"+91 98765", "'+91 98765"},
		{"-x", "'-x"},
		{"@cmd", "'@cmd"},
		{"a=b", "a=b"},
	}
	for _, tt := range tests {
		if got := SafeField(tt.in); got != tt.want {
			t.Errorf("SafeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteContacts(t *testing.T) {
	at := time.Date(2026, 8, 3, 10, 0, 0, 0, time.UTC)
	rows := []ContactRow{
		{ContactID: "c1", CompanyID: "k1", CompanyName: "Acme, Inc", Name: "Asha", Emails: []string{"a@acme.test", "b@acme.test"}, LastContactedAt: &at},
		{ContactID: "c2", CompanyID: "k1", CompanyName: "Acme, Inc", Name: "=HYPERLINK()", Phones: []string{"+1 555"}},
	}

	var buf bytes.Buffer
	if err := WriteContacts(&buf, rows); err != nil {
		t.Fatalf("WriteContacts() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing UTF-8 BOM")
	}
	if !strings.Contains(buf.String(), "\r\n") {
		t.Error("expected CRLF line endings")
	}

	recs, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	if err != nil {
		t.Fatalf("re-reading export: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if strings.Join(recs[0], ",") != strings.Join(ContactHeader, ",") {
		t.Errorf("header = %v", recs[0])
	}
	if recs[1][2] != "Acme, Inc" || recs[1][5] != "a@acme.test; b@acme.test" || recs[1][8] != "2026-08-03T10:00:00Z" {
		t.Errorf("row 1 = %v", recs[1])
	}
	if recs[2][3] != "'=HYPERLINK()" || recs[2][6] != "'+1 555" || recs[2][8] != "" {
		t.Errorf("row 2 = %v", recs[2])
	}
}
