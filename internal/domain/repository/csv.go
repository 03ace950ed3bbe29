package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"footfall_service/internal/domain/model"
)

// Canonical tabular schemas. Import normalizes synonym and case variants
// of these headers instead of failing; every applied fix is reported.
var (
	catalogColumns = []string{"location_code", "district", "state", "center_category", "baseline_footfall"}
	seriesColumns  = []string{"date", "location_code", "district", "state", "center_category", "footfall"}
)

// columnSynonyms maps normalized header variants to canonical names.
var columnSynonyms = map[string]string{
	"pincode":          "location_code",
	"pin":              "location_code",
	"pin_code":         "location_code",
	"center_id":        "location_code",
	"pec_id":           "location_code",
	"code":             "location_code",
	"dist":             "district",
	"transaction_date": "date",
	"visit_date":       "date",
	"day":              "date",
	"count":            "footfall",
	"visitors":         "footfall",
	"footfall_count":   "footfall",
	"daily_count":      "footfall",
	"transactions":     "footfall",
	"enrollments":      "footfall",
	"type":             "center_category",
	"center_type":      "center_category",
	"location_type":    "center_category",
	"pec_type":         "center_category",
	"category":         "center_category",
	"base_footfall":    "baseline_footfall",
	"baseline":         "baseline_footfall",
	"base_volume":      "baseline_footfall",
}

var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"01/02/2006",
	"2006-01-02T15:04:05",
}

// Category inference bounds when center_category is absent: a center
// seeing more than urbanFootfallBound visitors a day is Urban, fewer
// than ruralFootfallBound is Rural, anything between is Semi-Urban.
const (
	urbanFootfallBound = 150.0
	ruralFootfallBound = 100.0
)

// ImportCatalogCSV reads centers from the catalog tabular format.
func ImportCatalogCSV(r io.Reader) ([]model.Center, *model.CorrectionReport, error) {
	report := &model.CorrectionReport{}
	header, records, err := readTable(r)
	if err != nil {
		return nil, nil, err
	}

	cols := normalizeHeader(header, report)
	if _, ok := cols["location_code"]; !ok {
		return nil, nil, fmt.Errorf("catalog import: missing location_code column, got %v", header)
	}
	if _, ok := cols["baseline_footfall"]; !ok {
		return nil, nil, fmt.Errorf("catalog import: missing baseline_footfall column, got %v", header)
	}
	warnMissingGeo(cols, report)

	var centers []model.Center
	inferred := 0
	for _, rec := range records {
		base, err := strconv.ParseFloat(field(rec, cols, "baseline_footfall"), 64)
		if err != nil || base <= 0 {
			report.Addf("dropped catalog row with invalid baseline footfall %q", field(rec, cols, "baseline_footfall"))
			continue
		}
		category, wasInferred := resolveCategory(field(rec, cols, "center_category"), base)
		if wasInferred {
			inferred++
		}
		centers = append(centers, model.Center{
			LocationCode: strings.TrimSpace(field(rec, cols, "location_code")),
			District:     defaultIfEmpty(field(rec, cols, "district"), "Unknown"),
			State:        defaultIfEmpty(field(rec, cols, "state"), "Unknown"),
			Category:     category,
			BaseFootfall: base,
		})
	}
	if inferred > 0 {
		report.Addf("inferred center_category from footfall magnitude for %d rows", inferred)
	}
	if len(centers) == 0 {
		return nil, nil, errors.New("catalog import: no valid rows")
	}
	return centers, report, nil
}

// ExportCatalogCSV writes centers in the canonical catalog format.
// Exporting and re-importing reproduces the center set field for field.
func ExportCatalogCSV(w io.Writer, centers []model.Center) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(catalogColumns); err != nil {
		return err
	}
	for _, c := range centers {
		rec := []string{
			c.LocationCode,
			c.District,
			c.State,
			string(c.Category),
			strconv.FormatFloat(c.BaseFootfall, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportHolidaysCSV reads a flat list of dates, one per line. A header
// line is tolerated and skipped.
func ImportHolidaysCSV(r io.Reader) ([]time.Time, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var holidays []time.Time
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 {
			continue
		}
		raw := strings.TrimSpace(rec[0])
		if raw == "" {
			continue
		}
		d, err := parseDate(raw)
		if err != nil {
			// Header line or junk; skip.
			continue
		}
		holidays = append(holidays, d)
	}
	if len(holidays) == 0 {
		return nil, errors.New("holiday import: no valid dates")
	}
	return holidays, nil
}

// ImportSeriesCSV reads the raw observation series and derives the
// center set seen in it. Missing geography defaults to "Unknown" and a
// missing category column is inferred from footfall magnitude.
func ImportSeriesCSV(r io.Reader) ([]model.Observation, []model.Center, *model.CorrectionReport, error) {
	report := &model.CorrectionReport{}
	header, records, err := readTable(r)
	if err != nil {
		return nil, nil, nil, err
	}

	cols := normalizeHeader(header, report)
	for _, required := range []string{"date", "location_code", "footfall"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, nil, fmt.Errorf("series import: missing %s column, got %v", required, header)
		}
	}
	warnMissingGeo(cols, report)
	if _, ok := cols["center_category"]; !ok {
		report.Addf("center_category column missing, inferring from footfall magnitude")
	}

	var observations []model.Observation
	seen := make(map[string]int)                      // code -> index in centers
	totals := make(map[string][2]float64)             // code -> {sum, count} for inference
	explicit := make(map[string]model.CenterCategory) // first recognized category value per center
	var centers []model.Center
	dropped := 0

	for _, rec := range records {
		date, err := parseDate(field(rec, cols, "date"))
		if err != nil {
			dropped++
			continue
		}
		footfall, err := strconv.Atoi(strings.TrimSpace(field(rec, cols, "footfall")))
		if err != nil || footfall < 0 {
			dropped++
			continue
		}
		code := strings.TrimSpace(field(rec, cols, "location_code"))
		if code == "" {
			dropped++
			continue
		}

		observations = append(observations, model.Observation{
			LocationCode: code,
			Date:         date,
			Footfall:     footfall,
		})

		t := totals[code]
		totals[code] = [2]float64{t[0] + float64(footfall), t[1] + 1}

		if _, ok := explicit[code]; !ok {
			if category, inferred := resolveCategory(field(rec, cols, "center_category"), 0); !inferred {
				explicit[code] = category
			}
		}

		if _, ok := seen[code]; !ok {
			seen[code] = len(centers)
			centers = append(centers, model.Center{
				LocationCode: code,
				District:     defaultIfEmpty(field(rec, cols, "district"), "Unknown"),
				State:        defaultIfEmpty(field(rec, cols, "state"), "Unknown"),
			})
		}
	}
	if dropped > 0 {
		report.Addf("dropped %d malformed series rows", dropped)
	}
	if len(observations) == 0 {
		return nil, nil, nil, errors.New("series import: no valid rows")
	}

	// Baseline volume comes from the per-center mean. Category uses the
	// first explicit value anywhere in the center's rows; without one it
	// is inferred from the mean, never from a single row, so a holiday
	// first row cannot misclassify.
	for i := range centers {
		t := totals[centers[i].LocationCode]
		mean := t[0] / t[1]
		centers[i].BaseFootfall = mean
		if category, ok := explicit[centers[i].LocationCode]; ok {
			centers[i].Category = category
		} else {
			centers[i].Category = inferCategory(mean)
		}
	}

	return observations, centers, report, nil
}

func readTable(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, errors.New("csv has no data rows")
	}
	return all[0], all[1:], nil
}

// normalizeHeader lowercases headers, maps synonyms to canonical names
// and returns canonical name -> column index.
func normalizeHeader(header []string, report *model.CorrectionReport) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		name = strings.ReplaceAll(name, " ", "_")
		if canonical, ok := columnSynonyms[name]; ok {
			report.Addf("renamed column %q to %q", h, canonical)
			name = canonical
		}
		if _, taken := cols[name]; !taken {
			cols[name] = i
		}
	}
	return cols
}

func warnMissingGeo(cols map[string]int, report *model.CorrectionReport) {
	if _, ok := cols["district"]; !ok {
		report.Addf("district column missing, defaulting to %q", "Unknown")
	}
	if _, ok := cols["state"]; !ok {
		report.Addf("state column missing, defaulting to %q", "Unknown")
	}
}

func field(rec []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func defaultIfEmpty(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

// resolveCategory normalizes category spellings; an empty or
// unrecognized value is inferred from footfall magnitude.
func resolveCategory(raw string, footfall float64) (model.CenterCategory, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), " ", "-")) {
	case "urban", "u":
		return model.CategoryUrban, false
	case "rural", "r":
		return model.CategoryRural, false
	case "semi-urban", "semiurban", "s":
		return model.CategorySemiUrban, false
	default:
		return inferCategory(footfall), true
	}
}

func inferCategory(footfall float64) model.CenterCategory {
	switch {
	case footfall > urbanFootfallBound:
		return model.CategoryUrban
	case footfall < ruralFootfallBound:
		return model.CategoryRural
	default:
		return model.CategorySemiUrban
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, format := range dateFormats {
		d, err := time.Parse(format, raw)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
