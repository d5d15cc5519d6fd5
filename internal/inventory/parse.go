package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Warning records one skipped inventory record. A malformed line never
// aborts the whole parse; it is surfaced here instead.
type Warning struct {
	Record int
	Text   string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("record %d: %s (%q)", w.Record, w.Reason, w.Text)
}

// ParseError reports a total parse failure: input was present but no unit
// record could be extracted from it.
type ParseError struct {
	Reason   string
	Warnings []Warning
}

func (e *ParseError) Error() string {
	if len(e.Warnings) > 0 {
		return fmt.Sprintf("parse units: %s (%d records skipped)", e.Reason, len(e.Warnings))
	}
	return fmt.Sprintf("parse units: %s", e.Reason)
}

// Parse converts raw systemctl list-units output into an ordered unit
// sequence. It accepts both the JSON representation and the legacy
// whitespace-column layout, preserving source order in either case.
// Identical input always yields an identical result.
func Parse(raw []byte) ([]Unit, []Warning, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil, nil
	}
	if trimmed[0] == '[' {
		return parseJSON(trimmed)
	}
	return parseColumns(string(trimmed))
}

type jsonRecord struct {
	Unit        string `json:"unit"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Load        string `json:"load"`
	LoadState   string `json:"load_state"`
	Active      string `json:"active"`
	ActiveState string `json:"active_state"`
	Sub         string `json:"sub"`
	SubState    string `json:"sub_state"`
}

func parseJSON(raw []byte) ([]Unit, []Warning, error) {
	var records []jsonRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	units := make([]Unit, 0, len(records))
	var warnings []Warning
	for i, rec := range records {
		name := firstNonEmpty(rec.Unit, rec.Name)
		if strings.TrimSpace(name) == "" {
			warnings = append(warnings, Warning{Record: i, Reason: "record has no unit name"})
			continue
		}
		units = append(units, Unit{
			Name:        name,
			Description: rec.Description,
			LoadState:   firstNonEmpty(rec.Load, rec.LoadState),
			Active:      NormalizeActiveState(firstNonEmpty(rec.Active, rec.ActiveState)),
			Sub:         firstNonEmpty(rec.Sub, rec.SubState),
		})
	}
	if len(units) == 0 && len(records) > 0 {
		return nil, warnings, &ParseError{Reason: "no usable unit records", Warnings: warnings}
	}
	return units, warnings, nil
}

func parseColumns(text string) ([]Unit, []Warning, error) {
	lines := strings.Split(text, "\n")
	units := make([]Unit, 0, len(lines))
	var warnings []Warning
	records := 0
	for i, line := range lines {
		line = strings.TrimSpace(stripBullet(line))
		if line == "" || isLegendLine(line) {
			continue
		}
		records++
		fields := strings.Fields(line)
		if len(fields) < 4 {
			warnings = append(warnings, Warning{Record: i, Text: line, Reason: "too few columns"})
			continue
		}
		name := fields[0]
		if !strings.Contains(name, ".") {
			warnings = append(warnings, Warning{Record: i, Text: line, Reason: "first column is not a unit name"})
			continue
		}
		units = append(units, Unit{
			Name:        name,
			Description: strings.Join(fields[4:], " "),
			LoadState:   fields[1],
			Active:      NormalizeActiveState(fields[2]),
			Sub:         fields[3],
		})
	}
	if len(units) == 0 && records > 0 {
		return nil, warnings, &ParseError{Reason: "no usable unit records", Warnings: warnings}
	}
	return units, warnings, nil
}

// stripBullet removes the state marker systemctl prefixes to failed units.
func stripBullet(line string) string {
	for _, marker := range []string{"● ", "* ", "× "} {
		if strings.HasPrefix(line, marker) {
			return line[len(marker):]
		}
	}
	return line
}

// isLegendLine matches header and footer text emitted without --no-legend.
func isLegendLine(line string) bool {
	switch {
	case strings.HasPrefix(line, "UNIT "):
		return true
	case strings.HasPrefix(line, "LOAD "):
		return true
	case strings.HasPrefix(line, "ACTIVE "):
		return true
	case strings.HasPrefix(line, "SUB "):
		return true
	case strings.HasPrefix(line, "Legend:"):
		return true
	case strings.HasPrefix(line, "To show all installed unit files"):
		return true
	case strings.HasSuffix(line, "loaded units listed."):
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
