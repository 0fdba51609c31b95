package payroll

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Sealer encrypts archived payslips. A sealer without a key may return the input unchanged.
type Sealer interface {
	Seal(plain []byte) ([]byte, error)
	Configured() bool
}

// PayslipArchive stores rendered payslips on disk.
type PayslipArchive struct {
	dir    string
	sealer Sealer
}

func NewPayslipArchive(dir string, sealer Sealer) *PayslipArchive {
	return &PayslipArchive{dir: dir, sealer: sealer}
}

// Save writes the PDF as <employee>-<year>-<month ordinal>.pdf, with a .sealed suffix when
// the sealer is configured, and returns the file path.
func (a *PayslipArchive) Save(b Breakdown, ordinal int, pdf []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o750); err != nil {
		return "", err
	}
	name := PayslipFileName(b, ordinal)
	data := pdf
	if a.sealer != nil && a.sealer.Configured() {
		sealed, err := a.sealer.Seal(pdf)
		if err != nil {
			return "", fmt.Errorf("seal payslip: %w", err)
		}
		data = sealed
		name += ".sealed"
	}
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", err
	}
	return path, nil
}

// PayslipFileName is the download and archive name of a breakdown's payslip.
func PayslipFileName(b Breakdown, ordinal int) string {
	return fmt.Sprintf("%s-%d-%02d.pdf", safeFileName(b.EmployeeID), b.EffectiveYear, ordinal)
}

func safeFileName(id string) string {
	id = Transliterate(strings.TrimSpace(id))
	clean := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return r
		}
		return '_'
	}, id)
	if clean == "" {
		return "anonymous"
	}
	return clean
}
