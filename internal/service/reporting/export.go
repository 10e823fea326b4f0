package reporting

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mamadbah2/herdfeed/internal/domain/models"
)

// ErrNoData is returned when there is nothing to export.
var ErrNoData = errors.New("no data available to export")

const exportFilePrefix = "liveshock_herd_report_"

var csvHeader = []string{"Tag ID", "Name", "Group", "Weight (kg)", "Sex", "Breed", "Status", "Last Intake (kg)", "Birth Date"}

// ExportRow is one registry line as it appears in the CSV file.
type ExportRow struct {
	TagID        string
	Name         string
	Group        string
	WeightKg     float64
	Sex          string
	Breed        string
	Status       string
	LastIntakeKg float64
	BirthDate    string
}

// RowFromAnimal projects an animal onto its exported values, with intake
// rounded the same way the file renders it.
func RowFromAnimal(a models.Animal) ExportRow {
	intake, _ := strconv.ParseFloat(strconv.FormatFloat(a.LastIntakeKg, 'f', 2, 64), 64)
	return ExportRow{
		TagID:        a.TagID,
		Name:         a.Name,
		Group:        string(a.Group),
		WeightKg:     a.Weight,
		Sex:          string(a.Sex),
		Breed:        a.Breed,
		Status:       string(a.Status),
		LastIntakeKg: intake,
		BirthDate:    a.BirthDate,
	}
}

// ExportFilename embeds the export date.
func ExportFilename(now time.Time) string {
	return exportFilePrefix + now.Format(dateLayout) + ".csv"
}

// WriteCSV renders animals in registry order. String columns are always
// quoted, numeric ones never are.
func WriteCSV(w io.Writer, animals []models.Animal) error {
	if len(animals) == 0 {
		return ErrNoData
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(csvHeader, ",")); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range animals {
		fields := []string{
			quote(a.TagID),
			quote(a.Name),
			quote(string(a.Group)),
			strconv.FormatFloat(a.Weight, 'f', -1, 64),
			quote(string(a.Sex)),
			quote(a.Breed),
			quote(string(a.Status)),
			strconv.FormatFloat(a.LastIntakeKg, 'f', 2, 64),
			quote(a.BirthDate),
		}
		if _, err := bw.WriteString("\n" + strings.Join(fields, ",")); err != nil {
			return fmt.Errorf("write csv row %s: %w", a.TagID, err)
		}
	}

	return bw.Flush()
}

// ParseCSV reads a file produced by WriteCSV.
func ParseCSV(r io.Reader) ([]ExportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if strings.Join(header, ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("unexpected csv header %q", header)
	}

	var rows []ExportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		weight, err := parseFloat(record[3])
		if err != nil {
			return nil, fmt.Errorf("row %s weight: %w", record[0], err)
		}
		intake, err := parseFloat(record[7])
		if err != nil {
			return nil, fmt.Errorf("row %s intake: %w", record[0], err)
		}

		rows = append(rows, ExportRow{
			TagID:        record[0],
			Name:         record[1],
			Group:        record[2],
			WeightKg:     weight,
			Sex:          record[4],
			Breed:        record[5],
			Status:       record[6],
			LastIntakeKg: intake,
			BirthDate:    record[8],
		})
	}
	return rows, nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func parseFloat(value string) (float64, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}
