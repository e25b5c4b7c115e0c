package pipeline

import (
	"github.com/amp-labs/secflow/queue"
)

// Batch is the payload of a message on the extractor queue.
type Batch struct {
	CIKs []string `json:"ciks"`
}

// Record is the payload published downstream for every CIK of a batch.
type Record struct {
	BatchID   string `json:"batch_id,omitempty"`
	Input     string `json:"input"`
	CIK       string `json:"cik,omitempty"`
	Company   string `json:"company,omitempty"`
	Stage     string `json:"stage"`
	Completed bool   `json:"completed"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

// NewRecord describes res as part of the batch carried by message batchID.
func NewRecord(batchID string, res Result) Record {
	rec := Record{
		BatchID:   batchID,
		Input:     res.Input,
		CIK:       res.Summary.CIK,
		Company:   res.Summary.Company,
		Stage:     res.Summary.Stage,
		Completed: res.Summary.Completed,
		Attempts:  res.Attempts,
	}

	if res.Err != nil {
		rec.Stage = res.FailedStage
		rec.Error = res.Err.Error()
	}

	return rec
}

// NewBatchMessage wraps ciks in a queue message.
func NewBatchMessage(ciks ...string) (queue.Message, error) {
	return queue.NewMessage(Batch{CIKs: ciks})
}
