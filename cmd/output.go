package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/teemow/workspace-console/internal/result"
)

// printResult writes r's envelope as JSON and returns r's error so the command
// exits non-zero on failure.
func printResult[T any](w io.Writer, r result.Result[T], message string) error {
	fmt.Fprintln(w, r.JSON(message))
	return r.Err()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
