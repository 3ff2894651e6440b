package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aluiziolira/go-scrape-parts/models"
)

// OutputWriter persists a finished document.
type OutputWriter interface {
	Write(doc *models.Document) error
	Validate() error
}

// JSONWriter writes the document as indented JSON.
type JSONWriter struct {
	filename string
}

// NewJSONWriter targets filename.
func NewJSONWriter(filename string) *JSONWriter {
	return &JSONWriter{filename: filename}
}

// Write serializes doc to a temporary file and renames it into place, so a
// failed write never leaves a partial document.
func (jw *JSONWriter) Write(doc *models.Document) error {
	if err := ensureDir(jw.filename); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(jw.filename), ".results-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	buffer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(buffer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		tmp.Close()
		return fmt.Errorf("encode document: %w", err)
	}
	if err := buffer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), jw.filename); err != nil {
		return fmt.Errorf("move document into place: %w", err)
	}
	return nil
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	return validateFile(jw.filename, "json")
}

// ReadDocument parses a document written by JSONWriter.
func ReadDocument(filename string) (*models.Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var doc models.Document
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// CSVWriter writes a flat listing of every item.
type CSVWriter struct {
	filename string
}

// NewCSVWriter targets filename.
func NewCSVWriter(filename string) *CSVWriter {
	return &CSVWriter{filename: filename}
}

var csvHeader = []string{
	"group", "page", "sub_section", "name", "part_number", "image_part_number",
	"description", "list_price", "our_price", "image_file", "link",
}

// Write writes the header and one row per item.
func (cw *CSVWriter) Write(doc *models.Document) error {
	if err := ensureDir(cw.filename); err != nil {
		return err
	}

	f, err := os.Create(cw.filename)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, group := range doc.Groups {
		for _, page := range group.Pages {
			for _, item := range page.Items {
				record := []string{
					group.Name,
					page.Link,
					fmt.Sprint(page.SubSection),
					item.Name,
					item.PartNumber,
					item.ImagePartNumber,
					item.Description,
					deref(item.ListPrice),
					deref(item.OurPrice),
					deref(item.ImageFile),
					item.Link,
				}
				if err := writer.Write(record); err != nil {
					return fmt.Errorf("write csv record: %w", err)
				}
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return f.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	return validateFile(cw.filename, "csv")
}

// DualWriter writes the JSON document and the CSV listing.
type DualWriter struct {
	jsonWriter *JSONWriter
	csvWriter  *CSVWriter
}

// NewDualWriter targets both files.
func NewDualWriter(jsonFilename, csvFilename string) *DualWriter {
	return &DualWriter{
		jsonWriter: NewJSONWriter(jsonFilename),
		csvWriter:  NewCSVWriter(csvFilename),
	}
}

// Write writes the JSON document first; the CSV listing is derived from it.
func (dw *DualWriter) Write(doc *models.Document) error {
	if err := dw.jsonWriter.Write(doc); err != nil {
		return fmt.Errorf("JSON write failed: %w", err)
	}
	if err := dw.csvWriter.Write(doc); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	return nil
}

// Validate validates both output files.
func (dw *DualWriter) Validate() error {
	var errs []error

	if err := dw.jsonWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("JSON validation failed: %w", err))
	}
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("CSV validation failed: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %v", errs)
	}
	return nil
}

func validateFile(filename, kind string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
