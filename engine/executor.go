package engine

import (
	"io"

	"github.com/pdfkit-go/contentengine/core"
)

// processStream drives the tokenizer over `data`: objects are appended to an
// operand buffer; an operator token dispatches with the accumulated operands
// and clears the buffer (§4.D). End of stream (io.EOF from the tokenizer)
// terminates the loop without error. Any other tokenizer error is wrapped as
// a TokenizerError and returned — it propagates out of processStream
// unconditionally (§7: "Tokenizer errors propagate out of processStream").
func (e *Engine) processStream(data []byte) error {
	t := core.NewTokenizer(data)
	var operands []core.Object
	for {
		tok, err := t.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return newError(TokenizerError, "", err)
		}
		if tok.Kind != core.TokenOperator {
			operands = append(operands, tok.Object)
			continue
		}
		if tok.Object != nil {
			// BI: the tokenizer attaches the raw inline-image bytes.
			operands = append(operands, tok.Object)
		}
		dispatchErr := e.registry.dispatch(e, tok.Operator, operands)
		// Invariant (§8.3): operand buffer is empty immediately after dispatch.
		operands = operands[:0]
		if dispatchErr != nil {
			return dispatchErr
		}
	}
}
