package soundcloud

import "net/url"

// SimpleAPIResponse is the result of a call returning a single value.
type SimpleAPIResponse[T any] struct {
	Response Result[T, *Error]
}

// NewSimpleAPIResponse wraps a parsed result.
func NewSimpleAPIResponse[T any](result Result[T, *Error]) SimpleAPIResponse[T] {
	return SimpleAPIResponse[T]{Response: result}
}

// SimpleAPIResponseWithValue wraps a successful value.
func SimpleAPIResponseWithValue[T any](v T) SimpleAPIResponse[T] {
	return SimpleAPIResponse[T]{Response: Success[T, *Error](v)}
}

// SimpleAPIResponseWithError wraps a failure.
func SimpleAPIResponseWithError[T any](err *Error) SimpleAPIResponse[T] {
	return SimpleAPIResponse[T]{Response: Failure[T](err)}
}

// PaginatedAPIResponse is one page of a listing.
//
// Besides the page items it keeps the link to the next page and the
// function used to parse the items, so FetchNextPage returns a page
// decoded exactly like this one.
type PaginatedAPIResponse[T any] struct {
	Response Result[[]T, *Error]

	next  *url.URL
	parse func(JSON) Result[[]T, *Error]
	exec  *Executor
}

// PaginatedAPIResponseWithError returns a failed page with no next page.
func PaginatedAPIResponseWithError[T any](err *Error) PaginatedAPIResponse[T] {
	return PaginatedAPIResponse[T]{
		Response: Failure[[]T](err),
		parse: func(JSON) Result[[]T, *Error] {
			return Failure[[]T](ParsingError(nil))
		},
	}
}

// NewPaginatedAPIResponse builds a page from a listing document of the
// form {"collection": [...], "next_href": "..."}.
//
// parse receives the "collection" member. A missing or malformed
// "next_href" means there is no next page. exec is used by
// FetchNextPage and may be nil for a page that will never be advanced.
func NewPaginatedAPIResponse[T any](exec *Executor, raw JSON, parse func(JSON) Result[[]T, *Error]) PaginatedAPIResponse[T] {
	next, _ := raw.Key("next_href").URLValue()
	return PaginatedAPIResponse[T]{
		Response: parse(raw.Key("collection")),
		next:     next,
		parse:    parse,
		exec:     exec,
	}
}

// HasNextPage reports whether FetchNextPage will perform a request.
func (p PaginatedAPIResponse[T]) HasNextPage() bool {
	return p.next != nil
}

// NextPageURL returns the next page link, or nil.
func (p PaginatedAPIResponse[T]) NextPageURL() *url.URL {
	return p.next
}

// FetchNextPage requests the next page and delivers it to completion.
//
// It returns nil, and never calls completion, when there is no next
// page. Failures are delivered as a page built with
// PaginatedAPIResponseWithError. Concurrent calls are independent
// requests.
func (p PaginatedAPIResponse[T]) FetchNextPage(completion func(PaginatedAPIResponse[T])) CancelableOperation {
	if p.next == nil || p.exec == nil {
		return nil
	}

	exec, parse := p.exec, p.parse
	req := NewRequest(exec, APIErrors{}, p.next, MethodGet, nil, nil,
		func(raw JSON) Result[PaginatedAPIResponse[T], *Error] {
			return Success[PaginatedAPIResponse[T], *Error](NewPaginatedAPIResponse(exec, raw, parse))
		},
		func(result Result[PaginatedAPIResponse[T], *Error]) {
			completion(result.Recover(PaginatedAPIResponseWithError[T]))
		},
	)
	req.Start()
	return req
}
