// Package generation asks a generative text service for report narratives.
//
// The contract is deliberately small: a Generator receives the prompt-input
// dictionary and the report schema, and answers with a state plus raw
// outputs. Turning those outputs into a report is the articulation
// package's job.
package generation

import (
	"context"
	"fmt"

	"fitreport/internal/articulation"
)

// Response states.
const (
	StateFulfilled = "fulfilled"
	StateRejected  = "rejected"
	StateTruncated = "truncated"
	StateFailed    = "failed"
)

// Output is one generated value. Value is a string for text responses and
// may already be structured for services that return parsed JSON.
type Output struct {
	Value any
}

// Response is the result of one generation call.
type Response struct {
	State   string
	Outputs []Output
	Model   string
	// Reason carries the service's finish or block reason when State is not
	// fulfilled.
	Reason string
	// Token counts reported by the service, zero when unknown.
	InputTokens  int
	OutputTokens int
}

// Generator produces report text from prompt inputs.
type Generator interface {
	Generate(ctx context.Context, inputs map[string]any, schema articulation.Schema) (*Response, error)
}

// Error is a failed or non-fulfilled generation call.
type Error struct {
	State string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("text generation %s", e.State)
	}
	return fmt.Sprintf("text generation %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Check converts a response into its first output, or an *Error when the
// call was not fulfilled or produced nothing.
func Check(resp *Response) (any, error) {
	if resp == nil {
		return nil, &Error{State: StateFailed, Err: fmt.Errorf("empty response")}
	}
	if resp.State != StateFulfilled {
		var err error
		if resp.Reason != "" {
			err = fmt.Errorf("reason: %s", resp.Reason)
		}
		return nil, &Error{State: resp.State, Err: err}
	}
	if len(resp.Outputs) == 0 {
		return nil, &Error{State: resp.State, Err: fmt.Errorf("no outputs")}
	}
	return resp.Outputs[0].Value, nil
}
