package handler

import "unimarket/pkg/utils"

// pageBounds clamps a pagination window to a slice of length total.
func pageBounds(total int, params utils.PaginationParams) (int, int) {
	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}
	return start, end
}
