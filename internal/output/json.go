package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/msareview/internal/review"
)

// JSONWriter outputs the full result as JSON. Intermediate steps are
// omitted unless Steps is set.
type JSONWriter struct {
	Steps bool
}

func (j *JSONWriter) Write(w io.Writer, res *review.Result) error {
	out := *res
	if !j.Steps {
		out.Steps = nil
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
