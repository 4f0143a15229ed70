package tablestore

import (
	"context"
	"fmt"

	"servicelog/internal/observability"
	contextutils "servicelog/internal/utils"
)

// FetchAll retrieves every row of a table by walking fixed-size ranges
// [start, start+pageSize-1]. Pagination stops when a page comes back empty or
// shorter than pageSize; a table whose size is an exact multiple of pageSize
// therefore costs one extra empty request. Any page error aborts the whole
// fetch with no partial result.
func FetchAll[T any](ctx context.Context, client *Client, table, columns string, pageSize int) ([]T, error) {
	ctx, span := observability.TraceStoreFunction(ctx, "fetch_all",
		observability.AttributeTable(table),
	)
	defer observability.FinishSpan(span, nil)

	if pageSize <= 0 {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityError, "page size must be positive",
			fmt.Sprintf("got %d", pageSize))
	}

	var rows []T
	pages := 0
	for start := 0; ; start += pageSize {
		var page []T
		err := client.Table(table).
			Select(columns).
			Range(start, start+pageSize-1).
			Execute(ctx, &page)
		if err != nil {
			return nil, contextutils.WrapErrorf(err, "failed to fetch table %s at row %d", table, start)
		}
		pages++

		rows = append(rows, page...)
		if len(page) < pageSize {
			break
		}
	}

	span.SetAttributes(
		observability.AttributeRowCount(len(rows)),
		observability.AttributePageCount(pages),
	)
	return rows, nil
}
