// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the run service, translating HTTP concerns such as multipart uploads
// and status codes to business operations.
package api
