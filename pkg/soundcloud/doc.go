// Package soundcloud provides a client library for the SoundCloud REST API.
//
// # Overview
//
// The client covers tracks, users, playlists, comments, the activity feed,
// permalink resolution and the OAuth 2 login flow. Calls are asynchronous:
// each one returns a CancelableOperation immediately and later invokes its
// completion with a typed response.
//
// # Installation
//
//	go get github.com/jfmyers9/scloud/pkg/soundcloud
//
// # Quick Start
//
//	client, err := soundcloud.NewClient(soundcloud.Config{
//	    ClientID: "your-client-id",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// # Responses
//
// Single values are delivered as a SimpleAPIResponse, listings as a
// PaginatedAPIResponse. Both carry a Result whose failure side is an
// *Error:
//
//	client.Users().User(42, func(resp soundcloud.SimpleAPIResponse[soundcloud.User]) {
//	    user, ok := resp.Response.Value()
//	    if !ok {
//	        err, _ := resp.Response.Err()
//	        log.Println(err)
//	        return
//	    }
//	    fmt.Println(user.Username)
//	})
//
// # Pagination
//
// A PaginatedAPIResponse remembers the link to the next page and how its
// items were parsed. FetchNextPage returns nil on the last page:
//
//	var walk func(page soundcloud.PaginatedAPIResponse[soundcloud.Track])
//	walk = func(page soundcloud.PaginatedAPIResponse[soundcloud.Track]) {
//	    tracks, _ := page.Response.Value()
//	    for _, t := range tracks {
//	        fmt.Println(t.Title)
//	    }
//	    page.FetchNextPage(walk)
//	}
//	client.Tracks().Search(soundcloud.SearchQuery{Query: "ambient"}, walk)
//
// # Callbacks
//
// Completions run on the client's Dispatcher. By default this is a
// SerialQueue owned by the client, so completions never run concurrently
// with each other. A completion is invoked at most once, and never after
// its operation was cancelled.
//
// Synchronous code can use Await:
//
//	resp, err := soundcloud.Await(ctx, func(done func(soundcloud.SimpleAPIResponse[soundcloud.User])) soundcloud.CancelableOperation {
//	    return client.Me().Profile(done)
//	})
//
// # Authentication
//
//  1. Send the user to client.Auth().AuthorizeURL(state)
//  2. Extract the code from the redirect with client.Auth().HandleRedirect
//  3. Exchange it with client.Auth().Login
//
// With Config.RefreshOnForbidden set, calls that need a session refresh
// an expired access token once and retry when the API answers 401.
//
// # Error Handling
//
// Errors are *Error values. Use errors.Is with the predefined errors:
//
//	if errors.Is(err, soundcloud.ErrNeedsLogin) {
//	    // prompt for login
//	}
//
// Network errors report Temporary() == true.
package soundcloud
