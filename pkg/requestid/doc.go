// Package requestid tags HTTP requests with an id that is echoed back in the
// response and made available to handlers and log records.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware())
//
//	log := logger.New(logger.WithContextExtractors(requestid.LogAttr))
package requestid
