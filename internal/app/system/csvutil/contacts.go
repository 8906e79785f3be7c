// internal/app/system/csvutil/contacts.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strings"
	"time"
)

// ContactHeader is the first line of a contact export.
var ContactHeader = []string{
	"contact_id", "company_id", "company_name", "name", "designation",
	"emails", "phones", "preferred_contact_method", "last_contacted_at",
}

// ContactRow is one exported contact.
type ContactRow struct {
	ContactID       string
	CompanyID       string
	CompanyName     string
	Name            string
	Designation     string
	Emails          []string
	Phones          []string
	Preferred       string
	LastContactedAt *time.Time
}

func (r ContactRow) record() []string {
	last := ""
	if r.LastContactedAt != nil {
		last = r.LastContactedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		r.ContactID,
		r.CompanyID,
		SafeField(r.CompanyName),
		SafeField(r.Name),
		SafeField(r.Designation),
		SafeField(strings.Join(r.Emails, "; ")),
		SafeField(strings.Join(r.Phones, "; ")),
		r.Preferred,
		last,
	}
}

// WriteContacts writes a UTF-8 BOM (for Excel), the header and rows using
// CRLF line endings.
func WriteContacts(w io.Writer, rows []ContactRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(ContactHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SafeField neutralises spreadsheet formula injection by prefixing cells
// that start with a formula character.
func SafeField(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
