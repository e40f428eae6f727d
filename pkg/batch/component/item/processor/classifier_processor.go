// Package processor holds item processors that decide which records are written.
package processor

import (
	"context"

	"github.com/tigerroll/graphload/pkg/batch/core/application/port"
	"github.com/tigerroll/graphload/pkg/batch/core/domain/model"
	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// Classifier reports whether a record should be admitted. It must not modify the record.
type Classifier func(rec model.Record) bool

// AdmitAll admits every record.
func AdmitAll(model.Record) bool { return true }

// ClassifierProcessor is a port.ItemProcessor that filters records with a Classifier.
type ClassifierProcessor struct {
	classify Classifier
}

// NewClassifierProcessor creates a processor. A nil classifier admits everything.
func NewClassifierProcessor(classify Classifier) *ClassifierProcessor {
	if classify == nil {
		classify = AdmitAll
	}
	return &ClassifierProcessor{classify: classify}
}

// Process returns rec and true when admitted, nil and false otherwise.
func (p *ClassifierProcessor) Process(ctx context.Context, rec model.Record) (model.Record, bool) {
	if rec == nil || !p.classify(rec) {
		logger.Debugf("ClassifierProcessor: record filtered: id=%v", idOf(rec))
		return nil, false
	}
	return rec, true
}

func idOf(rec model.Record) interface{} {
	if rec == nil {
		return nil
	}
	return rec["id"]
}

var _ port.ItemProcessor[model.Record, model.Record] = (*ClassifierProcessor)(nil)
