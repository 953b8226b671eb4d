// Package sheets defines the port for mirroring exported rows to an
// external spreadsheet.
package sheets

import "context"

// RowAppender appends rows to an external sheet. Implementations must
// be safe to call concurrently.
type RowAppender interface {
	AppendRows(ctx context.Context, rows [][]any) error
}
