// Package http provides request and response helpers plus the middleware
// that ties each request to its own component extent.
//
// # Request scope
//
// RequestScope opens a fresh request store per inbound request. Request
// scoped components made from r.Context() are shared by everything in that
// request and discarded with it.
//
//	r.Use(gohttp.RequestScope)
//	r.Use(gohttp.RequestLogger(logger))
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	page  := req.Query("page", "1")
//	id    := req.RouteParam("id")   // requires chi
//	token := req.BearerToken()
//	rid   := req.RequestID()        // requires middleware.RequestID
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.Success(data)             // 200 {"data": ...}
//	res.Created(data)             // 201 {"data": ...}
//	res.NoContent()               // 204
//
//	res.Error(400, "bad input")   // {"message": "bad input"}
//	res.Unauthorized()            // 401 {"message": "Unauthenticated."}
//	res.NotFound()                // 404 {"message": "Not found."}
//	res.ServerError()             // 500 {"message": "Server Error."}
//	res.ContainerError(err)       // 500 {"message": ..., "code": "NO_ACTIVE_CONTEXT"}
package http
