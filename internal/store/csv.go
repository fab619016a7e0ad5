package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"shopmap/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVStore keeps records in a local CSV file. A missing file is an empty set.
type CSVStore struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewCSVStore(path string, logger *zap.Logger) *CSVStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVStore{path: path, logger: logger}
}

func (s *CSVStore) Path() string { return s.path }

// Exists reports whether the backing file is present.
func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

func (s *CSVStore) Load(_ context.Context) ([]models.ShopRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.ShopRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	s.logger.Debug("loaded local records", zap.String("path", s.path), zap.Int("count", len(records)))
	return records, nil
}

// Save rewrites the file through a temporary file in the same directory.
func (s *CSVStore) Save(_ context.Context, records []models.ShopRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".shops-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.logger.Info("saved local records", zap.String("path", s.path), zap.Int("count", len(records)))
	return nil
}

// ReadCSV parses records from r. A UTF-8 BOM is skipped, unknown columns are
// ignored and missing columns take their defaults.
func ReadCSV(r io.Reader) ([]models.ShopRecord, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.ShopRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	records := []models.ShopRecord{}
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return fields[i]
		}
		records = append(records, models.ShopRecord{
			Name:        get(models.ColName),
			City:        get(models.ColCity),
			Address:     get(models.ColAddress),
			Latitude:    models.ParseCoordinate(get(models.ColLatitude)),
			Longitude:   models.ParseCoordinate(get(models.ColLongitude)),
			Category:    get(models.ColCategory),
			JourneyType: get(models.ColJourneyType),
			VisitStatus: get(models.ColVisitStatus),
			Notes:       get(models.ColNotes),
			Rating:      models.ParseRating(get(models.ColRating)),
			ImageURLs:   models.ParseImageList(get(models.ColImageURL)),
		})
	}
	return normalizeAll(records), nil
}

// WriteCSV writes records with a UTF-8 BOM and a header row so that
// spreadsheet tools open the file with the right encoding.
func WriteCSV(w io.Writer, records []models.ShopRecord) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(models.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.Name,
			r.City,
			r.Address,
			formatCoordinate(r.Latitude),
			formatCoordinate(r.Longitude),
			r.Category,
			r.JourneyType,
			r.VisitStatus,
			r.Notes,
			strconv.Itoa(r.Rating),
			models.EncodeImageList(r.ImageURLs),
		}); err != nil {
			return fmt.Errorf("write record %q: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCoordinate(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
