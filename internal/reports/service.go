package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"promotore-backend/internal/processes"
	"promotore-backend/internal/shared/storage/object"
	"promotore-backend/internal/shared/telemetry"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet = "Resumo"
	dataSheet    = "Dados extraídos"

	// Excel refuses cells longer than this.
	maxCellChars = 32767
)

var (
	ErrNotProcessed = errors.New("process not processed")
	ErrInvalidData  = errors.New("extracted data is not a filename map")
)

// ProcessSource loads a process with its documents for the owner.
type ProcessSource interface {
	Detail(ctx context.Context, userID, processID int64) (processes.Detail, error)
}

// ReportPathWriter records where the latest report was stored.
type ReportPathWriter interface {
	UpdateReportPath(ctx context.Context, id int64, reportPath string) error
}

// Report is a generated workbook.
type Report struct {
	Key      string
	FileName string
	Data     []byte
}

// Service builds the conference workbook for processed processes.
type Service struct {
	Processes ProcessSource
	Paths     ReportPathWriter
	Store     object.ObjectStore
	now       func() time.Time
}

func NewService(procs ProcessSource, paths ReportPathWriter, store object.ObjectStore) *Service {
	return &Service{Processes: procs, Paths: paths, Store: store, now: time.Now}
}

// Generate builds the workbook, stores it and records its key on the process.
func (s *Service) Generate(ctx context.Context, userID, processID int64) (Report, error) {
	detail, err := s.Processes.Detail(ctx, userID, processID)
	if err != nil {
		return Report{}, err
	}
	if detail.Status != processes.StatusProcessed {
		return Report{}, ErrNotProcessed
	}

	data, err := decodeExtracted(detail.ExtractedData)
	if err != nil {
		return Report{}, err
	}

	now := s.now().UTC()
	body, err := buildWorkbook(detail, data, now)
	if err != nil {
		return Report{}, err
	}

	key := fmt.Sprintf("reports/%d_%s_relatorio.xlsx", processID, now.Format("20060102_150405"))
	if _, err := s.Store.SaveWithKey(ctx, key, ContentType, bytes.NewReader(body)); err != nil {
		return Report{}, fmt.Errorf("store report: %w", err)
	}
	if err := s.Paths.UpdateReportPath(ctx, processID, key); err != nil {
		return Report{}, fmt.Errorf("update report path: %w", err)
	}

	telemetry.Info("report.generated", map[string]any{
		"process_id": processID,
		"user_id":    userID,
		"documents":  len(data),
		"key":        key,
		"bytes":      len(body),
	})
	return Report{
		Key:      key,
		FileName: fmt.Sprintf("relatorio_processo_%d.xlsx", processID),
		Data:     body,
	}, nil
}

func decodeExtracted(raw json.RawMessage) (map[string]string, error) {
	out := map[string]string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return out, nil
}

func buildWorkbook(detail processes.Detail, data map[string]string, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return nil, err
	}

	score := ""
	if detail.Score != nil {
		score = strconv.Itoa(*detail.Score)
	}
	summary := [][2]any{
		{"Processo", detail.ID},
		{"Cliente", detail.ClientName},
		{"CPF", detail.ExternalID},
		{"Status", detail.Status},
		{"Score de conformidade", score},
		{"Documentos", len(detail.Documentos)},
		{"Criado em", detail.CreatedAt.Format("2006-01-02 15:04:05")},
		{"Gerado em", generatedAt.Format("2006-01-02 15:04:05")},
	}
	sum := &sheetWriter{f: f, sheet: summarySheet}
	for i, kv := range summary {
		sum.set(1, i+1, kv[0])
		sum.set(2, i+1, kv[1])
	}
	sum.style("A1", fmt.Sprintf("A%d", len(summary)), bold)
	sum.width("A", 24)
	sum.width("B", 40)
	if sum.err != nil {
		return nil, fmt.Errorf("xlsx %s: %w", summarySheet, sum.err)
	}

	rows := &sheetWriter{f: f, sheet: dataSheet}
	rows.set(1, 1, "Documento")
	rows.set(2, 1, "Conteúdo extraído")
	rows.style("A1", "B1", bold)

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		rows.set(1, i+2, name)
		rows.set(2, i+2, truncate(data[name], maxCellChars))
	}
	if len(names) > 0 {
		rows.style("B2", fmt.Sprintf("B%d", len(names)+1), wrap)
	}
	rows.width("A", 32)
	rows.width("B", 100)
	if rows.err != nil {
		return nil, fmt.Errorf("xlsx %s: %w", dataSheet, rows.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first excelize error; later calls are no-ops.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, from, to, id)
	}
}

func (w *sheetWriter) width(col string, v float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, col, col, v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
