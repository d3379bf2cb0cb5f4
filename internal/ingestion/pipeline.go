package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"promotore-backend/internal/documents"
	"promotore-backend/internal/extraction"
	"promotore-backend/internal/llm"
	"promotore-backend/internal/processes"
	"promotore-backend/internal/shared/metrics"
	"promotore-backend/internal/shared/telemetry"
)

// PlaceholderScore is recorded on every processed process until a real
// conformity check exists.
const PlaceholderScore = 85

var (
	ErrProcessNotFound = errors.New("process not found")
	ErrNoDocuments     = errors.New("no documents for process")
)

// ProcessStore is the subset of the process repository the pipeline needs.
type ProcessStore interface {
	GetByIDForUser(ctx context.Context, id, userID int64) (processes.Process, error)
	UpdateExtraction(ctx context.Context, id int64, status string, extracted json.RawMessage, score int) error
}

// DocumentLister lists a process's documents in insertion order.
type DocumentLister interface {
	ListByProcess(ctx context.Context, processID int64) ([]documents.Document, error)
}

// Result is the outcome of extracting one document.
type Result struct {
	FileName string
	Text     string
	Err      error
}

// Value is what gets stored for the document in the aggregate.
func (r Result) Value() string {
	if r.Err != nil {
		return "Erro: " + r.Err.Error()
	}
	return r.Text
}

// Outcome summarizes a finished run.
type Outcome struct {
	ProcessID int64
	Results   []Result
	Data      map[string]string
	Failed    int
}

// Pipeline extracts every document of a process and records the aggregate
// with a single write.
type Pipeline struct {
	Processes ProcessStore
	Documents DocumentLister
	Extractor extraction.Extractor
	now       func() time.Time
}

func NewPipeline(procs ProcessStore, docs DocumentLister, extractor extraction.Extractor) *Pipeline {
	return &Pipeline{Processes: procs, Documents: docs, Extractor: extractor, now: time.Now}
}

// Run processes every document of the process owned by userID. A returned
// error means the process was left unchanged.
func (p *Pipeline) Run(ctx context.Context, userID, processID int64) (Outcome, error) {
	start := p.now()
	out, err := p.run(ctx, userID, processID)
	metrics.ObserveIngestionSeconds(p.now().Sub(start).Seconds())
	if err != nil {
		metrics.IncIngestionRun(metrics.OutcomeFailure)
		telemetry.Error("ingestion.failed", map[string]any{
			"process_id": processID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return Outcome{}, err
	}
	metrics.IncIngestionRun(metrics.OutcomeSuccess)
	telemetry.Info("ingestion.complete", map[string]any{
		"process_id":  processID,
		"user_id":     userID,
		"documents":   len(out.Results),
		"failed":      out.Failed,
		"duration_ms": p.now().Sub(start).Milliseconds(),
	})
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, userID, processID int64) (Outcome, error) {
	if _, err := p.Processes.GetByIDForUser(ctx, processID, userID); err != nil {
		if errors.Is(err, processes.ErrNotFound) {
			return Outcome{}, ErrProcessNotFound
		}
		return Outcome{}, fmt.Errorf("load process: %w", err)
	}

	docs, err := p.Documents.ListByProcess(ctx, processID)
	if err != nil {
		return Outcome{}, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return Outcome{}, ErrNoDocuments
	}

	telemetry.Info("ingestion.start", map[string]any{
		"process_id": processID,
		"user_id":    userID,
		"documents":  len(docs),
	})

	out := Outcome{ProcessID: processID, Results: make([]Result, 0, len(docs))}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		res := p.extractOne(ctx, processID, doc)
		if res.Err != nil {
			out.Failed++
		}
		out.Results = append(out.Results, res)
	}

	out.Data = Aggregate(out.Results)
	payload, err := encodeData(out.Data)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode extracted data: %w", err)
	}
	if err := p.Processes.UpdateExtraction(ctx, processID, processes.StatusProcessed, payload, PlaceholderScore); err != nil {
		return Outcome{}, fmt.Errorf("update process: %w", err)
	}
	return out, nil
}

func (p *Pipeline) extractOne(ctx context.Context, processID int64, doc documents.Document) Result {
	start := p.now()
	text, err := p.Extractor.Extract(ctx, doc.FilePath, llm.ExtractionInstruction(doc.FileName))
	res := Result{FileName: doc.FileName, Text: text, Err: err}

	fields := map[string]any{
		"process_id":  processID,
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"duration_ms": p.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		metrics.IncDocumentExtraction(metrics.OutcomeFailure)
		fields["error"] = err.Error()
		telemetry.Warn("ingestion.document", fields)
	} else {
		metrics.IncDocumentExtraction(metrics.OutcomeSuccess)
		fields["chars"] = len(text)
		telemetry.Info("ingestion.document", fields)
	}
	return res
}

// Aggregate maps each file name to its text or error marker. Later results
// overwrite earlier ones with the same file name.
func Aggregate(results []Result) map[string]string {
	data := make(map[string]string, len(results))
	for _, r := range results {
		data[r.FileName] = r.Value()
	}
	return data
}

func encodeData(data map[string]string) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
