package tasks

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/spotboard/internal/services"
)

// MaxPageSize is the largest page the listing endpoints serve.
const MaxPageSize = 50

// FetchUpTo walks a cursor-based listing and returns at most maxItems items in service order.
//
// The first request asks for pageSize items (clamped to 1..50); each following request uses the
// page's next reference. Pages are fetched strictly one after another and no request is issued once
// maxItems items have accumulated.
//
// When a page fails the walk stops and the items gathered so far are returned together with the
// error. The slice is never nil: a failed first page yields an empty slice.
func FetchUpTo[T any](ctx context.Context, src PageSource, endpoint, key string, maxItems, pageSize int) ([]T, error) {
	if maxItems <= 0 {
		return []T{}, nil
	}

	pageSize = min(max(pageSize, 1), MaxPageSize)

	ref, err := withLimit(endpoint, pageSize)
	if err != nil {
		return []T{}, err
	}

	items := make([]T, 0, min(maxItems, 4*MaxPageSize))
	for page := 1; ref != "" && len(items) < maxItems; page++ {
		var p services.Paging[T]
		if err := src.Page(ctx, ref, key, &p); err != nil {
			return items, fmt.Errorf("page %d of %s: %w", page, endpoint, err)
		}

		items = append(items, p.Items...)
		if len(p.Items) == 0 {
			break
		}
		ref = p.NextRef()
	}

	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}

// withLimit sets the limit query parameter on a relative endpoint.
func withLimit(endpoint string, limit int) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
