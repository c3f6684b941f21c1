package model

import "fmt"

// BatchResult reports a sequence of independent remote operations. Items that
// succeeded before a failure stay applied.
type BatchResult struct {
	Requested int            `json:"requested"`
	Succeeded int            `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
	Message   string         `json:"message"`
}

type BatchFailure struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

func NewBatchResult(requested int) *BatchResult {
	return &BatchResult{Requested: requested, Failed: []BatchFailure{}}
}

func (b *BatchResult) Succeed() {
	b.Succeeded++
}

func (b *BatchResult) Fail(item, reason string) {
	b.Failed = append(b.Failed, BatchFailure{Item: item, Error: reason})
}

// Summarize fills Message with "<verb> N of M <noun>".
func (b *BatchResult) Summarize(verb, noun string) {
	b.Message = fmt.Sprintf("%s %d of %d %s", verb, b.Succeeded, b.Requested, noun)
}
