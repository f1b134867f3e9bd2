// Package study holds the content transforms behind the study pages: note extraction,
// mock-test generation and grading, timetables, plan entries, document chunk retrieval
// and the mentor analysis. Everything here is pure; randomness comes from the caller.
package study

import "errors"

var (
	ErrEmptyText    = errors.New("please enter text or upload a file")
	ErrNoSentences  = errors.New("not enough usable sentences to build questions")
	ErrNoSubjects   = errors.New("enter at least one subject")
	ErrTooManyHours = errors.New("hours per day cannot exceed number of subjects (no repeats allowed)")
	ErrOutOfRange   = errors.New("value out of range")
	ErrBadTime      = errors.New("start time must be HH:MM (24h)")
	ErrBadDate      = errors.New("date must be YYYY-MM-DD")
	ErrNoDocuments  = errors.New("upload PDFs first")
	ErrNoQuestion   = errors.New("enter a question")
)
